package selector

import (
	"github.com/spigell/momster-match/internal/ai"
	"github.com/spigell/momster-match/internal/locale"
	"github.com/spigell/momster-match/internal/profile"
)

const FallbackScore = 70

var fallbackReasons = map[locale.Language]struct {
	primary   string
	secondary string
}{
	locale.Greek: {
		primary:   "Είστε στην ίδια πόλη — ίσως να έχετε περισσότερα κοινά απ' όσο νομίζετε! 🌸",
		secondary: "Μπορεί να σας εκπλήξει!",
	},
	locale.English: {
		primary:   "You're in the same city — you might have more in common than you think! 🌸",
		secondary: "They might surprise you!",
	},
}

// Fallback picks the first candidate with fixed wording. It returns nil only
// when there is nothing to pick.
func Fallback(candidates []*profile.Profile, lang locale.Language) *Result {
	if len(candidates) == 0 {
		return nil
	}

	text, ok := fallbackReasons[lang]
	if !ok {
		text = fallbackReasons[locale.English]
	}

	return &Result{
		SelectedProfile:  candidates[0],
		MatchScore:       FallbackScore,
		PrimaryReason:    text.primary,
		SecondaryReasons: []string{text.secondary},
		MatchType:        ai.MatchTypeNearbyVibes,
		Fallback:         true,
		State:            StateFallback,
	}
}
