// Package gateway ranks candidates through an OpenAI compatible chat
// completions gateway using a forced function call.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/spigell/momster-match/internal/ai"
	"github.com/spigell/momster-match/internal/utils"
)

const (
	Provider = "gateway"

	DefaultBaseURL = "https://ai.gateway.lovable.dev/v1"
	DefaultModel   = "google/gemini-3-flash-preview"

	defaultTimeout      = 30 * time.Second
	defaultMaxLogLength = 200
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	Timeout      time.Duration
	MaxLogLength int
}

type Ranker struct {
	client    chatCompleter
	model     string
	logger    *zap.Logger
	maxLogLen int
}

// New builds a gateway ranker. A missing API key is not an error here: Rank
// reports ai.ErrUpstreamConfig so the caller gets a proper response.
func New(cfg Config, logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLength
	}

	r := &Ranker{model: model, logger: logger, maxLogLen: maxLogLen}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey != "" {
		clientCfg := openai.DefaultConfig(apiKey)
		clientCfg.BaseURL = baseURL
		clientCfg.HTTPClient = &http.Client{Timeout: timeout}
		r.client = openai.NewClientWithConfig(clientCfg)
	}

	return r
}

func (r *Ranker) Name() string { return Provider }

func (r *Ranker) Model() string { return r.model }

func (r *Ranker) Rank(ctx context.Context, req *ai.RankRequest) (*ai.Decision, error) {
	if r.client == nil {
		return nil, fmt.Errorf("%w: gateway api key is missing", ai.ErrUpstreamConfig)
	}
	if req == nil || strings.TrimSpace(req.Document) == "" {
		return nil, errors.New("rank request must contain a document")
	}

	r.logger.Debug("gateway chat completion request",
		zap.Int("candidates", req.CandidateCount),
		zap.Int("prompt_length", utf8.RuneCountInString(req.Document)),
		zap.String("prompt_preview", utils.TruncateForLog(req.Document, r.maxLogLen)),
	)

	resp, err := r.client.CreateChatCompletion(ctx, r.buildRequest(req))
	if err != nil {
		return nil, classify(err)
	}

	call := firstToolCall(resp)
	if call == nil {
		return nil, fmt.Errorf("%w: no tool call in response", ai.ErrUpstreamMalformed)
	}

	r.logger.Debug("gateway chat completion response",
		zap.String("tool", call.Function.Name),
		zap.Int("response_length", utf8.RuneCountInString(call.Function.Arguments)),
		zap.String("response_preview", utils.TruncateForLog(call.Function.Arguments, r.maxLogLen)),
	)

	if call.Function.Name != "" && call.Function.Name != ai.ToolName {
		return nil, fmt.Errorf("%w: unexpected tool %q", ai.ErrUpstreamMalformed, call.Function.Name)
	}

	return ai.ParseArguments(call.Function.Arguments)
}

func (r *Ranker) buildRequest(req *ai.RankRequest) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.Document},
		},
		Tools: []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ai.ToolName,
				Description: ai.ToolDescription(),
				Parameters:  ai.ToolParameters(),
			},
		}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: ai.ToolName},
		},
	}
}

func firstToolCall(resp openai.ChatCompletionResponse) *openai.ToolCall {
	if len(resp.Choices) == 0 {
		return nil
	}
	calls := resp.Choices[0].Message.ToolCalls
	if len(calls) == 0 {
		return nil
	}
	return &calls[0]
}

// classify maps transport and API errors onto the ai taxonomy.
func classify(err error) error {
	status := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ai.ErrUpstreamRateLimited, err)
	case 0:
		return fmt.Errorf("%w: %w", ai.ErrUpstreamHTTP, err)
	default:
		return fmt.Errorf("%w: status %d: %w", ai.ErrUpstreamHTTP, status, err)
	}
}
