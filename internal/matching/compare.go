package matching

import (
	"strings"

	"github.com/spigell/momster-match/internal/profile"
)

// ComparisonRecord holds the features of one candidate relative to the
// requester. Records are built per request and never stored.
type ComparisonRecord struct {
	Candidate         *profile.Profile
	CommonInterests   []string
	ChildAges         []string
	CommonChildAges   []string
	SameArea          bool
	SameCity          bool
	SameMaritalStatus bool
}

// CompareCandidate computes the comparison features. Interest tags are matched
// exactly (case-sensitive) while locations are compared case-insensitively.
func CompareCandidate(requester, candidate *profile.Profile) ComparisonRecord {
	childAges := candidate.ResolvedChildAges()

	return ComparisonRecord{
		Candidate:         candidate,
		CommonInterests:   intersect(requester.InterestSet(), candidate.InterestSet()),
		ChildAges:         childAges,
		CommonChildAges:   intersect(requester.ResolvedChildAges(), childAges),
		SameArea:          sameLocation(requester.Area, candidate.Area),
		SameCity:          sameLocation(requester.City, candidate.City),
		SameMaritalStatus: requester.MaritalStatus != "" && requester.MaritalStatus == candidate.MaritalStatus,
	}
}

// intersect keeps the order of left and reports every value once.
func intersect(left, right []string) []string {
	index := make(map[string]struct{}, len(right))
	for _, v := range right {
		index[v] = struct{}{}
	}

	out := make([]string, 0)
	for _, v := range left {
		if _, ok := index[v]; !ok {
			continue
		}
		delete(index, v)
		out = append(out, v)
	}
	return out
}

// sameLocation never reports a match for two unknown locations.
func sameLocation(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
