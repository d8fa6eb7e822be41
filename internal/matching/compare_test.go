package matching

import (
	"reflect"
	"testing"

	"github.com/spigell/momster-match/internal/profile"
)

func TestCompareCandidateInterests(t *testing.T) {
	t.Parallel()

	requester := &profile.Profile{Interests: []string{"yoga", "coffee"}}

	tests := []struct {
		name      string
		candidate *profile.Profile
		expect    []string
	}{
		{
			name:      "one shared tag",
			candidate: &profile.Profile{ID: "a", Interests: []string{"yoga", "books"}},
			expect:    []string{"yoga"},
		},
		{
			name:      "nothing shared",
			candidate: &profile.Profile{ID: "b", Interests: []string{"running"}},
			expect:    []string{},
		},
		{
			name:      "matching is case sensitive",
			candidate: &profile.Profile{ID: "c", Interests: []string{"Yoga", "coffee"}},
			expect:    []string{"coffee"},
		},
		{
			name:      "candidate without interests",
			candidate: &profile.Profile{ID: "d"},
			expect:    []string{},
		},
		{
			name:      "duplicated tags count once",
			candidate: &profile.Profile{ID: "e", Interests: []string{"coffee", "coffee", "yoga"}},
			expect:    []string{"yoga", "coffee"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			record := CompareCandidate(requester, tt.candidate)
			if !reflect.DeepEqual(record.CommonInterests, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, record.CommonInterests)
			}
			if record.Candidate != tt.candidate {
				t.Fatalf("expected record to point at the candidate")
			}
		})
	}
}

func TestCompareCandidateLocation(t *testing.T) {
	t.Parallel()

	requester := &profile.Profile{Area: "Glyfada", City: "Athens"}

	tests := []struct {
		name     string
		area     string
		city     string
		sameArea bool
		sameCity bool
	}{
		{name: "case insensitive area", area: "glyfada", city: "Athens", sameArea: true, sameCity: true},
		{name: "different area same city", area: "Kifisia", city: "ATHENS", sameArea: false, sameCity: true},
		{name: "different city", area: "Glyfada", city: "Thessaloniki", sameArea: true, sameCity: false},
		{name: "unknown location", area: "", city: "", sameArea: false, sameCity: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			record := CompareCandidate(requester, &profile.Profile{Area: tt.area, City: tt.city})
			if record.SameArea != tt.sameArea {
				t.Fatalf("same area: expected %v, got %v", tt.sameArea, record.SameArea)
			}
			if record.SameCity != tt.sameCity {
				t.Fatalf("same city: expected %v, got %v", tt.sameCity, record.SameCity)
			}
		})
	}
}

func TestCompareCandidateUnknownLocationsOnBothSides(t *testing.T) {
	record := CompareCandidate(&profile.Profile{}, &profile.Profile{})
	if record.SameArea || record.SameCity {
		t.Fatalf("expected two unknown locations not to match: %+v", record)
	}
}

func TestCompareCandidateChildrenAndStatus(t *testing.T) {
	requester := &profile.Profile{
		MaritalStatus: "single",
		Children:      []profile.Child{{AgeGroup: "toddler"}, {Age: "7"}},
	}
	candidate := &profile.Profile{
		MaritalStatus: "single",
		ChildAgeGroup: "toddler",
	}

	record := CompareCandidate(requester, candidate)

	if !reflect.DeepEqual(record.ChildAges, []string{"toddler"}) {
		t.Fatalf("expected profile level age group fallback, got %v", record.ChildAges)
	}
	if !reflect.DeepEqual(record.CommonChildAges, []string{"toddler"}) {
		t.Fatalf("unexpected common child ages: %v", record.CommonChildAges)
	}
	if !record.SameMaritalStatus {
		t.Fatalf("expected same marital status")
	}

	record = CompareCandidate(&profile.Profile{}, &profile.Profile{})
	if record.SameMaritalStatus {
		t.Fatalf("expected unset marital status not to match")
	}
}

func TestSummarizeRequester(t *testing.T) {
	t.Parallel()

	summary := SummarizeRequester(&profile.Profile{
		FullName:  "Maria",
		City:      "Athens",
		Interests: []string{"yoga", "yoga", "books"},
		Children: []profile.Child{
			{AgeGroup: "0-1"},
			{Age: "3"},
			{Name: "no age"},
		},
		ChildAgeGroup: "toddler",
	})

	if summary.Name != "Maria" || summary.City != "Athens" {
		t.Fatalf("unexpected identity fields: %+v", summary)
	}
	if !reflect.DeepEqual(summary.Interests, []string{"yoga", "books"}) {
		t.Fatalf("unexpected interests: %v", summary.Interests)
	}
	if !reflect.DeepEqual(summary.ResolvedChildAges(), []string{"0-1", "3"}) {
		t.Fatalf("unexpected child ages: %v", summary.ResolvedChildAges())
	}

	empty := SummarizeRequester(&profile.Profile{ChildAgeGroup: "toddler"})
	if !reflect.DeepEqual(empty.ResolvedChildAges(), []string{"toddler"}) {
		t.Fatalf("expected the profile age group, got %v", empty.ResolvedChildAges())
	}
	if len(empty.Interests) != 0 {
		t.Fatalf("expected no interests, got %v", empty.Interests)
	}
}
