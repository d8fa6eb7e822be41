package ai

import (
	"encoding/json"

	_ "embed"
)

//go:embed schema/tool.json
var toolSchemaJSON []byte

// ToolDescription describes the forced function to the ranking service.
func ToolDescription() string { return toolDescription }

// ToolParameters returns the JSON schema of the forced function parameters.
func ToolParameters() json.RawMessage {
	out := make(json.RawMessage, len(toolSchemaJSON))
	copy(out, toolSchemaJSON)
	return out
}
