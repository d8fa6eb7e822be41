package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/momster-match/internal/ai"
	"github.com/spigell/momster-match/internal/utils"
)

const (
	Provider = "gemini"

	defaultModel        = "gemini-2.5-flash"
	defaultMaxLogLength = 200
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Config struct {
	APIKey       string
	Model        string
	MaxLogLength int
}

// Ranker asks Gemini to call the selection function exactly once.
type Ranker struct {
	models    contentGenerator
	model     string
	logger    *zap.Logger
	maxLogLen int
}

// New creates a ranker backed by the Gemini API. Without an API key the ranker
// is still returned and every Rank call reports ai.ErrUpstreamConfig.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Ranker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	r := &Ranker{model: model, logger: logger, maxLogLen: maxLogLen}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return r, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	r.models = client.Models

	return r, nil
}

func (r *Ranker) Name() string { return Provider }

func (r *Ranker) Model() string {
	if r == nil {
		return ""
	}
	return r.model
}

func (r *Ranker) Rank(ctx context.Context, req *ai.RankRequest) (*ai.Decision, error) {
	if r == nil || r.models == nil {
		return nil, fmt.Errorf("%w: gemini api key is missing", ai.ErrUpstreamConfig)
	}
	if req == nil || strings.TrimSpace(req.Document) == "" {
		return nil, errors.New("rank request must contain a document")
	}

	r.logger.Debug("gemini generate content request",
		zap.Int("candidates", req.CandidateCount),
		zap.Int("prompt_length", utf8.RuneCountInString(req.Document)),
		zap.String("prompt_preview", utils.TruncateForLog(req.Document, r.maxLogLen)),
	)

	resp, err := r.models.GenerateContent(ctx, r.model, genai.Text(req.Document), r.config(req))
	if err != nil {
		return nil, classify(err)
	}

	call := findCall(resp)
	if call == nil {
		return nil, fmt.Errorf("%w: no function call in response", ai.ErrUpstreamMalformed)
	}

	raw, _ := json.Marshal(call.Args)
	r.logger.Debug("gemini generate content response",
		zap.String("function", call.Name),
		zap.Int("response_length", len(raw)),
		zap.String("response_preview", utils.TruncateForLog(string(raw), r.maxLogLen)),
	)

	decision, err := ai.DecodeDecision(call.Args)
	if err != nil {
		return nil, err
	}
	decision.Raw = string(raw)

	return decision, nil
}

func (r *Ranker) config(req *ai.RankRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{
			FunctionDeclarations: []*genai.FunctionDeclaration{selectBestMatch()},
		}},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{ai.ToolName},
			},
		},
	}

	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	return cfg
}

func findCall(resp *genai.GenerateContentResponse) *genai.FunctionCall {
	if resp == nil {
		return nil
	}
	for _, call := range resp.FunctionCalls() {
		if call != nil && call.Name == ai.ToolName {
			return call
		}
	}
	return nil
}

func classify(err error) error {
	code := 0

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}

	if code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", ai.ErrUpstreamRateLimited, err)
	}
	return fmt.Errorf("%w: %w", ai.ErrUpstreamHTTP, err)
}
