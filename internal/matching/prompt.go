package matching

import (
	"strings"

	_ "embed"

	"github.com/spigell/momster-match/internal/locale"
)

var (
	//go:embed prompts/system.md
	systemTemplate string
	//go:embed prompts/examples_en.md
	examplesEnglish string
	//go:embed prompts/examples_el.md
	examplesGreek string
)

// SystemPrompt returns the ranking instructions with reason examples in the
// requested language.
func SystemPrompt(lang locale.Language) string {
	examples := examplesEnglish
	if lang == locale.Greek {
		examples = examplesGreek
	}

	prompt := strings.ReplaceAll(systemTemplate, "{{LANGUAGE}}", lang.Name())
	prompt = strings.ReplaceAll(prompt, "{{EXAMPLES}}", strings.TrimSpace(examples))
	return strings.TrimSpace(prompt)
}
