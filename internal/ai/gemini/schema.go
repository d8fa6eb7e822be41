package gemini

import (
	"encoding/json"

	"google.golang.org/genai"

	"github.com/spigell/momster-match/internal/ai"
)

// selectBestMatch mirrors ai.ToolParameters in the genai schema dialect. The
// descriptions are read from the shared schema so both providers see the same
// wording.
func selectBestMatch() *genai.FunctionDeclaration {
	var shared struct {
		Properties map[string]struct {
			Description string `json:"description"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	_ = json.Unmarshal(ai.ToolParameters(), &shared)

	describe := func(name string) string {
		return shared.Properties[name].Description
	}

	enum := make([]string, 0, len(ai.MatchTypes()))
	for _, mt := range ai.MatchTypes() {
		enum = append(enum, string(mt))
	}

	return &genai.FunctionDeclaration{
		Name:        ai.ToolName,
		Description: ai.ToolDescription(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"selectedProfileIndex": {Type: genai.TypeInteger, Description: describe("selectedProfileIndex")},
				"matchScore":           {Type: genai.TypeNumber, Description: describe("matchScore")},
				"primaryReason":        {Type: genai.TypeString, Description: describe("primaryReason")},
				"secondaryReasons": {
					Type:        genai.TypeArray,
					Items:       &genai.Schema{Type: genai.TypeString},
					Description: describe("secondaryReasons"),
				},
				"matchType": {Type: genai.TypeString, Enum: enum, Description: describe("matchType")},
			},
			Required: shared.Required,
		},
	}
}
