package locale

import "testing"

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		expect Language
	}{
		{input: "", expect: English},
		{input: "el", expect: Greek},
		{input: "el-GR", expect: Greek},
		{input: "EL", expect: Greek},
		{input: "en", expect: English},
		{input: "en-US", expect: English},
		{input: "de", expect: English},
		{input: "not a tag!!", expect: English},
		{input: "el-GR,el;q=0.9,en;q=0.8", expect: Greek},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := Resolve(tt.input); got != tt.expect {
				t.Fatalf("Resolve(%q): expected %s, got %s", tt.input, tt.expect, got)
			}
		})
	}
}

func TestName(t *testing.T) {
	if Greek.Name() != "Greek" || English.Name() != "English" {
		t.Fatalf("unexpected names: %s %s", Greek.Name(), English.Name())
	}
}
