package ai

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/decision.json
var decisionSchemaJSON string

// The reply schema is looser than the tool parameters: numbers may come back as
// strings and secondary reasons may be omitted.
var decisionSchema = mustSchema(decisionSchemaJSON)

func mustSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid decision schema: %v", err))
	}
	return schema
}

// ParseArguments decodes the JSON arguments of a tool call and validates them.
func ParseArguments(raw string) (*Decision, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty arguments", ErrUpstreamMalformed)
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(cleaned), &args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamMalformed, err)
	}

	decision, err := DecodeDecision(args)
	if err != nil {
		return nil, err
	}
	decision.Raw = raw
	return decision, nil
}

// DecodeDecision validates the arguments against the decision schema and
// decodes them with weak typing.
func DecodeDecision(args map[string]any) (*Decision, error) {
	if args == nil {
		return nil, fmt.Errorf("%w: no arguments", ErrUpstreamMalformed)
	}

	result, err := decisionSchema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamMalformed, err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrUpstreamMalformed, strings.Join(problems, "; "))
	}

	var decision Decision
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &decision,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamMalformed, err)
	}

	if math.IsNaN(decision.MatchScore) || math.IsInf(decision.MatchScore, 0) {
		return nil, fmt.Errorf("%w: match score is not a number", ErrUpstreamMalformed)
	}

	decision.PrimaryReason = strings.TrimSpace(decision.PrimaryReason)
	if decision.PrimaryReason == "" {
		return nil, fmt.Errorf("%w: primary reason is blank", ErrUpstreamMalformed)
	}

	return &decision, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
