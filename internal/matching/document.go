package matching

import (
	"errors"
	"fmt"
	"strings"

	_ "embed"

	"github.com/spigell/momster-match/internal/profile"
)

// MaxCandidates bounds the prompt size. Candidates past this index are never
// compared and therefore never selectable.
const MaxCandidates = 10

var ErrNoCandidates = errors.New("no candidates to compare")

//go:embed prompts/user.md
var userTemplate string

// Document is the rendered comparison handed to the ranking service together
// with the exact candidate slice it refers to.
type Document struct {
	Text       string
	Requester  RequesterSummary
	Records    []ComparisonRecord
	Candidates []*profile.Profile
	// Dropped counts candidates excluded by the MaxCandidates cap.
	Dropped int
}

// Len is the number of candidates the ranking service can pick from.
func (d *Document) Len() int {
	return len(d.Candidates)
}

func BuildComparisonDocument(requester *profile.Profile, candidates []*profile.Profile) (*Document, error) {
	if requester == nil {
		return nil, errors.New("requester profile is required")
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	submitted := candidates
	if len(submitted) > MaxCandidates {
		submitted = submitted[:MaxCandidates]
	}

	summary := SummarizeRequester(requester)
	records := make([]ComparisonRecord, 0, len(submitted))
	blocks := make([]string, 0, len(submitted))
	for i, candidate := range submitted {
		if candidate == nil {
			return nil, fmt.Errorf("candidate %d is nil", i+1)
		}
		record := CompareCandidate(requester, candidate)
		records = append(records, record)
		blocks = append(blocks, renderCandidate(i+1, record))
	}

	text := strings.ReplaceAll(userTemplate, "{{REQUESTER}}", renderRequester(summary))
	text = strings.ReplaceAll(text, "{{CANDIDATES}}", strings.Join(blocks, "\n"))

	return &Document{
		Text:       text,
		Requester:  summary,
		Records:    records,
		Candidates: submitted,
		Dropped:    len(candidates) - len(submitted),
	}, nil
}

func renderRequester(s RequesterSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Name: %s\n", orNotSpecified(s.Name))
	fmt.Fprintf(&b, "- Location: %s\n", location(s.Area, s.City))
	fmt.Fprintf(&b, "- Interests: %s\n", joinOrNotSpecified(s.Interests))
	fmt.Fprintf(&b, "- Children ages: %s\n", joinOrNotSpecified(s.ResolvedChildAges()))
	fmt.Fprintf(&b, "- Marital Status: %s\n", orNotSpecified(s.MaritalStatus))
	fmt.Fprintf(&b, "- Bio: %s", orNotSpecified(s.Bio))
	return b.String()
}

func renderCandidate(n int, r ComparisonRecord) string {
	p := r.Candidate

	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s\n", n, orNotSpecified(p.FullName))
	fmt.Fprintf(&b, "   - Location: %s\n", location(p.Area, p.City))
	fmt.Fprintf(&b, "   - Interests: %s\n", joinOrNotSpecified(p.InterestSet()))
	fmt.Fprintf(&b, "   - Common interests with current: [%s]\n", strings.Join(r.CommonInterests, ", "))
	fmt.Fprintf(&b, "   - Children ages: %s\n", joinOrNotSpecified(r.ChildAges))
	fmt.Fprintf(&b, "   - Common children ages with current: [%s]\n", strings.Join(r.CommonChildAges, ", "))
	fmt.Fprintf(&b, "   - Marital Status: %s\n", orNotSpecified(p.MaritalStatus))
	fmt.Fprintf(&b, "   - Same marital status: %s\n", yesNo(r.SameMaritalStatus))
	fmt.Fprintf(&b, "   - Same area: %s\n", yesNo(r.SameArea))
	fmt.Fprintf(&b, "   - Same city: %s\n", yesNo(r.SameCity))
	fmt.Fprintf(&b, "   - Bio: %s\n", orNotSpecified(p.Bio))
	return b.String()
}

func location(area, city string) string {
	parts := make([]string, 0, 2)
	for _, v := range []string{area, city} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return joinOrNotSpecified(parts)
}

func orNotSpecified(v string) string {
	if strings.TrimSpace(v) == "" {
		return NotSpecified
	}
	return v
}

func joinOrNotSpecified(values []string) string {
	if len(values) == 0 {
		return NotSpecified
	}
	return strings.Join(values, ", ")
}

func yesNo(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}
