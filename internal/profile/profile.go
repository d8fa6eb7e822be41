package profile

const ProfileIDField = "ID"

// Profiles is an ordered list of mom profiles. Order matters: the first
// profile is the deterministic fallback pick.
type Profiles struct {
	Items []*Profile
}

type Profile struct {
	ID              string   `json:"id"`
	FullName        string   `json:"full_name"`
	ProfilePhotoURL *string  `json:"profile_photo_url"`
	City            string   `json:"city"`
	Area            string   `json:"area"`
	Interests       []string `json:"interests"`
	ChildAgeGroup   string   `json:"child_age_group,omitempty"`
	Children        []Child  `json:"children,omitempty"`
	Bio             string   `json:"bio,omitempty"`
	LastSeenAt      string   `json:"last_seen_at,omitempty"`
	MaritalStatus   string   `json:"marital_status,omitempty"`
}

type Child struct {
	Age      string `json:"age,omitempty"`
	AgeGroup string `json:"ageGroup,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Name     string `json:"name,omitempty"`
}

// ChildAges resolves the age of every child, preferring the age group label
// over the free-text age. Children with neither are skipped.
func (p *Profile) ChildAges() []string {
	ages := make([]string, 0, len(p.Children))
	for _, child := range p.Children {
		age := child.AgeGroup
		if age == "" {
			age = child.Age
		}
		if age == "" {
			continue
		}
		ages = append(ages, age)
	}
	return ages
}

// ResolvedChildAges returns ChildAges, falling back to the profile level age
// group when no child carries an age.
func (p *Profile) ResolvedChildAges() []string {
	ages := p.ChildAges()
	if len(ages) == 0 && p.ChildAgeGroup != "" {
		return []string{p.ChildAgeGroup}
	}
	return ages
}

// InterestSet returns the interest tags without duplicates, keeping the first
// occurrence order.
func (p *Profile) InterestSet() []string {
	seen := make(map[string]struct{}, len(p.Interests))
	out := make([]string, 0, len(p.Interests))
	for _, interest := range p.Interests {
		if interest == "" {
			continue
		}
		if _, ok := seen[interest]; ok {
			continue
		}
		seen[interest] = struct{}{}
		out = append(out, interest)
	}
	return out
}

func (p *Profile) GetStringField(name string) string {
	switch name {
	case ProfileIDField:
		return p.ID
	default:
		return ""
	}
}

func New(items []*Profile) *Profiles {
	return &Profiles{Items: items}
}

func (ps *Profiles) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.Items)
}

func (ps *Profiles) IDs() []string {
	ids := make([]string, 0, ps.Len())
	for _, p := range ps.Items {
		ids = append(ids, p.ID)
	}
	return ids
}

func (ps *Profiles) Names() []string {
	names := make([]string, 0, ps.Len())
	for _, p := range ps.Items {
		names = append(names, p.FullName)
	}
	return names
}

func (ps *Profiles) FindByID(id string) *Profile {
	for _, p := range ps.Items {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Contains reports whether the exact profile pointer is part of the list.
func (ps *Profiles) Contains(target *Profile) bool {
	for _, p := range ps.Items {
		if p == target {
			return true
		}
	}
	return false
}

// Exclude drops every profile whose field matches one of the targets and
// returns the ids of the dropped profiles. The remaining order is kept.
func (ps *Profiles) Exclude(name string, targets []string) []string {
	if len(targets) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		set[target] = struct{}{}
	}

	return ps.Filter(func(p *Profile) bool {
		_, drop := set[p.GetStringField(name)]
		return !drop
	})
}

// Filter keeps the profiles for which keep returns true and returns the ids of
// the dropped ones.
func (ps *Profiles) Filter(keep func(p *Profile) bool) []string {
	var excluded []string
	kept := ps.Items[:0]
	for _, p := range ps.Items {
		if p == nil || !keep(p) {
			if p != nil {
				excluded = append(excluded, p.ID)
			}
			continue
		}
		kept = append(kept, p)
	}
	ps.Items = kept
	return excluded
}
