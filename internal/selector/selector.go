// Package selector turns a requester and a candidate list into a single match,
// asking a ranking backend first and falling back to a fixed answer when the
// backend is unusable.
package selector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/momster-match/internal/ai"
	"github.com/spigell/momster-match/internal/locale"
	"github.com/spigell/momster-match/internal/logger"
	"github.com/spigell/momster-match/internal/matching"
	"github.com/spigell/momster-match/internal/metrics"
	"github.com/spigell/momster-match/internal/profile"
)

type State string

const (
	StateIdle                State = "idle"
	StateExtractingFeatures  State = "extracting_features"
	StateAwaitingRanking     State = "awaiting_ranking"
	StateResolved            State = "resolved"
	StateFallback            State = "fallback"
	StateRateLimited         State = "rate_limited"
	StateErrored             State = "errored"
)

const (
	MinScore            = 60
	MaxScore            = 100
	MaxSecondaryReasons = 3
	DefaultTimeout      = 30 * time.Second
)

type Request struct {
	Requester  *profile.Profile
	Candidates []*profile.Profile
	Language   locale.Language
}

type Result struct {
	SelectedProfile  *profile.Profile `json:"selectedProfile"`
	MatchScore       int              `json:"matchScore"`
	PrimaryReason    string           `json:"primaryReason"`
	SecondaryReasons []string         `json:"secondaryReasons"`
	MatchType        ai.MatchType     `json:"matchType"`
	Fallback         bool             `json:"fallback,omitempty"`
	State            State            `json:"-"`
}

type Config struct {
	// Timeout bounds a single ranking call. Zero means DefaultTimeout and a
	// negative value disables the bound.
	Timeout time.Duration
}

type Selector struct {
	ranker  ai.Ranker
	timeout time.Duration
	logger  *zap.Logger
}

func New(ranker ai.Ranker, cfg Config, log *zap.Logger) (*Selector, error) {
	if ranker == nil {
		return nil, errors.New("ranker is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	model := ""
	if m, ok := ranker.(interface{ Model() string }); ok {
		model = m.Model()
	}

	return &Selector{
		ranker:  ranker,
		timeout: timeout,
		logger:  logger.WithRanker(log, ranker.Name(), model),
	}, nil
}

// Select runs one match. It returns matching.ErrNoCandidates for an empty list,
// ai.ErrUpstreamRateLimited and ai.ErrUpstreamConfig unchanged, and a fallback
// result for every other ranking failure.
func (s *Selector) Select(ctx context.Context, req Request) (*Result, error) {
	log := logger.FromContext(ctx, s.logger)
	if req.Requester != nil {
		log = logger.WithMatch(log, req.Requester.ID, req.Language.String())
	}

	state := StateIdle
	move := func(next State) {
		log.Debug("match state changed", zap.String("from", string(state)), zap.String("to", string(next)))
		state = next
	}

	if len(req.Candidates) == 0 {
		metrics.ObserveOutcome("no_candidates", 0)
		return nil, matching.ErrNoCandidates
	}

	move(StateExtractingFeatures)
	doc, err := matching.BuildComparisonDocument(req.Requester, req.Candidates)
	if err != nil {
		move(StateErrored)
		metrics.ObserveOutcome(string(state), 0)
		return nil, fmt.Errorf("build comparison document: %w", err)
	}
	if doc.Dropped > 0 {
		log.Info("candidate list capped", zap.Int("kept", doc.Len()), zap.Int("dropped", doc.Dropped))
	}

	move(StateAwaitingRanking)
	decision, err := s.rank(ctx, req.Language, doc)

	switch {
	case errors.Is(err, ai.ErrUpstreamRateLimited):
		move(StateRateLimited)
		log.Warn("ranking service rate limited", zap.Error(err))
		metrics.ObserveOutcome(string(state), 0)
		return nil, err
	case errors.Is(err, ai.ErrUpstreamConfig):
		move(StateErrored)
		log.Error("ranking service is not configured", zap.Error(err))
		metrics.ObserveOutcome(string(state), 0)
		return nil, err
	case err != nil && errors.Is(ctx.Err(), context.Canceled):
		move(StateErrored)
		metrics.ObserveOutcome(string(state), 0)
		return nil, err
	case err != nil:
		move(StateFallback)
		log.Warn("ranking failed, using fallback match", zap.Error(err))
		return s.fallback(req), nil
	}

	result, err := s.resolve(log, decision, doc)
	if err != nil {
		move(StateFallback)
		log.Warn("ranking decision unusable, using fallback match", zap.Error(err))
		return s.fallback(req), nil
	}

	move(StateResolved)
	result.State = state
	log.Info("match selected",
		zap.String("selected_profile_id", result.SelectedProfile.ID),
		zap.Int("score", result.MatchScore),
		zap.String("match_type", string(result.MatchType)),
	)
	metrics.ObserveOutcome(string(state), result.MatchScore)

	return result, nil
}

func (s *Selector) rank(ctx context.Context, lang locale.Language, doc *matching.Document) (*ai.Decision, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	decision, err := s.ranker.Rank(ctx, &ai.RankRequest{
		SystemPrompt:   matching.SystemPrompt(lang),
		Document:       doc.Text,
		CandidateCount: doc.Len(),
		Language:       lang.String(),
	})
	metrics.ObserveRanker(s.ranker.Name(), rankResult(err), time.Since(start))

	return decision, err
}

func (s *Selector) resolve(log *zap.Logger, decision *ai.Decision, doc *matching.Document) (*Result, error) {
	if decision == nil {
		return nil, fmt.Errorf("%w: empty decision", ai.ErrUpstreamMalformed)
	}
	if !decision.MatchType.Valid() {
		return nil, fmt.Errorf("%w: unknown match type %q", ai.ErrUpstreamMalformed, decision.MatchType)
	}
	primary := strings.TrimSpace(decision.PrimaryReason)
	if primary == "" {
		return nil, fmt.Errorf("%w: primary reason is blank", ai.ErrUpstreamMalformed)
	}

	idx := decision.SelectedProfileIndex - 1
	if idx < 0 || idx >= len(doc.Candidates) {
		log.Warn("selected profile index out of range, using first candidate",
			zap.Int("index", decision.SelectedProfileIndex),
			zap.Int("candidates", len(doc.Candidates)),
		)
		metrics.IndexAnomaly()
		idx = 0
	}

	return &Result{
		SelectedProfile:  doc.Candidates[idx],
		MatchScore:       ClampScore(decision.MatchScore),
		PrimaryReason:    primary,
		SecondaryReasons: secondaryReasons(decision.SecondaryReasons),
		MatchType:        decision.MatchType,
	}, nil
}

func (s *Selector) fallback(req Request) *Result {
	result := Fallback(req.Candidates, req.Language)
	metrics.ObserveOutcome(string(StateFallback), result.MatchScore)
	return result
}

// ClampScore rounds a raw score and bounds it to [MinScore, MaxScore].
// The bounds are applied before the conversion so huge values saturate at
// MaxScore.
func ClampScore(score float64) int {
	if math.IsNaN(score) {
		return MinScore
	}
	return int(math.Max(MinScore, math.Min(MaxScore, math.Round(score))))
}

func secondaryReasons(in []string) []string {
	out := make([]string, 0, MaxSecondaryReasons)
	for _, reason := range in {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			continue
		}
		out = append(out, reason)
		if len(out) == MaxSecondaryReasons {
			break
		}
	}
	return out
}

func rankResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ai.ErrUpstreamRateLimited):
		return "rate_limited"
	case errors.Is(err, ai.ErrUpstreamConfig):
		return "config"
	case errors.Is(err, ai.ErrUpstreamMalformed):
		return "malformed"
	default:
		return "error"
	}
}
