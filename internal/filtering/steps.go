package filtering

import (
	"context"
	"errors"
	"strings"

	"github.com/spigell/momster-match/internal/profile"
)

type selfFilter struct {
	toggle
	requesterID string
}

// NewSelf creates a filter that drops the requester from the requester's own candidates.
func NewSelf(requesterID string) Filter {
	return &selfFilter{requesterID: strings.TrimSpace(requesterID)}
}

func (f *selfFilter) Name() string { return "self" }

func (f *selfFilter) Validate() error {
	if f.requesterID == "" {
		return errors.New("requester id is required")
	}
	return nil
}

func (f *selfFilter) Apply(_ context.Context, ps *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := ps.Len()
	dropped := ps.Exclude(profile.ProfileIDField, []string{f.requesterID})
	return ps, Step{Initial: initial, Dropped: len(dropped), Left: ps.Len()}, nil
}

func (f *selfFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type duplicatesFilter struct {
	toggle
}

// NewDuplicates creates a filter that keeps only the first profile of every id.
func NewDuplicates() Filter {
	return &duplicatesFilter{}
}

func (f *duplicatesFilter) Name() string { return "duplicates" }

func (f *duplicatesFilter) Validate() error { return nil }

func (f *duplicatesFilter) Apply(_ context.Context, ps *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := ps.Len()
	seen := make(map[string]struct{}, initial)
	dropped := ps.Filter(func(p *profile.Profile) bool {
		if p.ID == "" {
			return true
		}
		if _, ok := seen[p.ID]; ok {
			return false
		}
		seen[p.ID] = struct{}{}
		return true
	})
	return ps, Step{Initial: initial, Dropped: len(dropped), Left: ps.Len()}, nil
}

type excludedFilter struct {
	toggle
	ids []string
}

// NewExcluded creates a filter that removes profiles blocked in the configuration.
func NewExcluded(ids []string) Filter {
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			clean = append(clean, id)
		}
	}
	return &excludedFilter{ids: clean}
}

func (f *excludedFilter) Name() string { return "excluded" }

func (f *excludedFilter) Validate() error { return nil }

func (f *excludedFilter) Apply(_ context.Context, ps *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := ps.Len()
	if len(f.ids) == 0 {
		return ps, Step{Initial: initial, Dropped: 0, Left: ps.Len()}, nil
	}

	dropped := ps.Exclude(profile.ProfileIDField, f.ids)
	return ps, Step{Initial: initial, Dropped: len(dropped), Left: ps.Len()}, nil
}

func (f *excludedFilter) Status() Status {
	details := map[string]string{}
	if len(f.ids) > 0 {
		details["ids"] = strings.Join(f.ids, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type incompleteFilter struct {
	toggle
}

// NewIncomplete creates a filter that removes profiles without an id or a name.
func NewIncomplete() Filter {
	return &incompleteFilter{}
}

func (f *incompleteFilter) Name() string { return "incomplete" }

func (f *incompleteFilter) Validate() error { return nil }

func (f *incompleteFilter) Apply(_ context.Context, ps *profile.Profiles) (*profile.Profiles, Step, error) {
	initial := ps.Len()
	dropped := ps.Filter(func(p *profile.Profile) bool {
		return p != nil && strings.TrimSpace(p.ID) != "" && strings.TrimSpace(p.FullName) != ""
	})
	return ps, Step{Initial: initial, Dropped: len(dropped), Left: ps.Len()}, nil
}

// Defaults is the pipeline applied to store sourced candidates.
func Defaults(requesterID string, excluded []string) []Filter {
	return []Filter{
		NewIncomplete(),
		NewSelf(requesterID),
		NewDuplicates(),
		NewExcluded(excluded),
	}
}
