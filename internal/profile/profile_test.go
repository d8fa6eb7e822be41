package profile

import (
	"reflect"
	"testing"
)

func TestChildAges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		profile  *Profile
		direct   []string
		resolved []string
	}{
		{
			name:     "prefers age group",
			profile:  &Profile{Children: []Child{{Age: "2", AgeGroup: "toddler"}, {Age: "5"}}},
			direct:   []string{"toddler", "5"},
			resolved: []string{"toddler", "5"},
		},
		{
			name:     "skips empty children",
			profile:  &Profile{Children: []Child{{Name: "Eleni"}, {AgeGroup: "newborn"}}},
			direct:   []string{"newborn"},
			resolved: []string{"newborn"},
		},
		{
			name:     "falls back to profile age group",
			profile:  &Profile{ChildAgeGroup: "0-1", Children: []Child{{Name: "Nikos"}}},
			direct:   []string{},
			resolved: []string{"0-1"},
		},
		{
			name:     "nothing known",
			profile:  &Profile{},
			direct:   []string{},
			resolved: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.profile.ChildAges(); !reflect.DeepEqual(got, tt.direct) {
				t.Fatalf("ChildAges: expected %v, got %v", tt.direct, got)
			}
			if got := tt.profile.ResolvedChildAges(); !reflect.DeepEqual(got, tt.resolved) {
				t.Fatalf("ResolvedChildAges: expected %v, got %v", tt.resolved, got)
			}
		})
	}
}

func TestInterestSetDeduplicates(t *testing.T) {
	p := &Profile{Interests: []string{"yoga", "coffee", "yoga", "", "Yoga"}}

	got := p.InterestSet()
	want := []string{"yoga", "coffee", "Yoga"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestExcludeKeepsOrder(t *testing.T) {
	ps := New([]*Profile{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}})

	excluded := ps.Exclude(ProfileIDField, []string{"b", "x"})

	if !reflect.DeepEqual(excluded, []string{"b"}) {
		t.Fatalf("unexpected excluded ids: %v", excluded)
	}
	if !reflect.DeepEqual(ps.IDs(), []string{"a", "c", "d"}) {
		t.Fatalf("unexpected remaining ids: %v", ps.IDs())
	}
}

func TestContainsComparesIdentity(t *testing.T) {
	a := &Profile{ID: "a"}
	ps := New([]*Profile{a})

	if !ps.Contains(a) {
		t.Fatalf("expected list to contain its own element")
	}
	if ps.Contains(&Profile{ID: "a"}) {
		t.Fatalf("expected a copy not to be reported as a member")
	}
}
