// Package matching turns a requester profile and its candidates into the
// comparison document consumed by the ranking service.
package matching

import (
	"github.com/spigell/momster-match/internal/profile"
)

// NotSpecified is rendered for every missing field so the ranking service never
// has to guess what an empty value means.
const NotSpecified = "Not specified"

type RequesterSummary struct {
	Name          string
	Area          string
	City          string
	Interests     []string
	ChildAges     []string
	ChildAgeGroup string
	MaritalStatus string
	Bio           string
}

func SummarizeRequester(p *profile.Profile) RequesterSummary {
	return RequesterSummary{
		Name:          p.FullName,
		Area:          p.Area,
		City:          p.City,
		Interests:     p.InterestSet(),
		ChildAges:     p.ChildAges(),
		ChildAgeGroup: p.ChildAgeGroup,
		MaritalStatus: p.MaritalStatus,
		Bio:           p.Bio,
	}
}

// ResolvedChildAges prefers the per child ages and falls back to the profile
// level age group.
func (s RequesterSummary) ResolvedChildAges() []string {
	if len(s.ChildAges) == 0 && s.ChildAgeGroup != "" {
		return []string{s.ChildAgeGroup}
	}
	return s.ChildAges
}
