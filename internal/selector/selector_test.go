package selector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/momster-match/internal/ai"
	"github.com/spigell/momster-match/internal/locale"
	"github.com/spigell/momster-match/internal/matching"
	"github.com/spigell/momster-match/internal/metrics"
	"github.com/spigell/momster-match/internal/profile"
)

type fakeRanker struct {
	mu       sync.Mutex
	decision *ai.Decision
	err      error
	delay    time.Duration
	requests []*ai.RankRequest
}

func (f *fakeRanker) Name() string { return "fake" }

func (f *fakeRanker) Rank(ctx context.Context, req *ai.RankRequest) (*ai.Decision, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ai.ErrUpstreamHTTP, ctx.Err())
		case <-time.After(f.delay):
		}
	}
	return f.decision, f.err
}

func (f *fakeRanker) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func requester() *profile.Profile {
	return &profile.Profile{ID: "me", FullName: "Anna", City: "Athens", Interests: []string{"yoga"}}
}

func candidateList(n int) []*profile.Profile {
	out := make([]*profile.Profile, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, &profile.Profile{ID: fmt.Sprintf("c%d", i), FullName: fmt.Sprintf("Mom %d", i), City: "Athens"})
	}
	return out
}

func validDecision(index int) *ai.Decision {
	return &ai.Decision{
		SelectedProfileIndex: index,
		MatchScore:           87.6,
		PrimaryReason:        "  You both love yoga  ",
		SecondaryReasons:     []string{"Same city"},
		MatchType:            ai.MatchTypeSharedInterests,
	}
}

func newSelector(t *testing.T, r ai.Ranker, log *zap.Logger) *Selector {
	t.Helper()
	s, err := New(r, Config{Timeout: time.Second}, log)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return s
}

func TestSelectResolved(t *testing.T) {
	t.Parallel()

	candidates := candidateList(3)
	ranker := &fakeRanker{decision: validDecision(2)}

	result, err := newSelector(t, ranker, zap.NewNop()).Select(context.Background(), Request{
		Requester:  requester(),
		Candidates: candidates,
		Language:   locale.Greek,
	})
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}

	if result.SelectedProfile != candidates[1] {
		t.Fatalf("expected second candidate, got %+v", result.SelectedProfile)
	}
	if result.MatchScore != 88 {
		t.Fatalf("expected rounded score 88, got %d", result.MatchScore)
	}
	if result.PrimaryReason != "You both love yoga" {
		t.Fatalf("unexpected primary reason %q", result.PrimaryReason)
	}
	if result.Fallback || result.State != StateResolved {
		t.Fatalf("expected resolved result, got %+v", result)
	}

	req := ranker.requests[0]
	if req.CandidateCount != 3 || req.Language != "el" {
		t.Fatalf("unexpected rank request: %+v", req)
	}
	if !strings.Contains(req.SystemPrompt, "Greek") {
		t.Fatalf("expected Greek system prompt")
	}
}

func TestSelectNoCandidates(t *testing.T) {
	t.Parallel()

	ranker := &fakeRanker{decision: validDecision(1)}
	_, err := newSelector(t, ranker, zap.NewNop()).Select(context.Background(), Request{Requester: requester()})
	if !errors.Is(err, matching.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
	if ranker.calls() != 0 {
		t.Fatalf("ranker must not be called for an empty list")
	}
}

func TestSelectFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		ranker *fakeRanker
	}{
		{name: "http error", ranker: &fakeRanker{err: fmt.Errorf("%w: status 500", ai.ErrUpstreamHTTP)}},
		{name: "unauthorized", ranker: &fakeRanker{err: fmt.Errorf("%w: status 401", ai.ErrUpstreamHTTP)}},
		{name: "malformed", ranker: &fakeRanker{err: fmt.Errorf("%w: no tool call", ai.ErrUpstreamMalformed)}},
		{name: "unexpected error", ranker: &fakeRanker{err: errors.New("boom")}},
		{name: "nil decision", ranker: &fakeRanker{}},
		{name: "unknown match type", ranker: &fakeRanker{decision: &ai.Decision{SelectedProfileIndex: 1, MatchScore: 80, PrimaryReason: "x", MatchType: "soulmates"}}},
		{name: "blank reason", ranker: &fakeRanker{decision: &ai.Decision{SelectedProfileIndex: 1, MatchScore: 80, PrimaryReason: "  ", MatchType: ai.MatchTypeSameStage}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			candidates := candidateList(4)
			result, err := newSelector(t, tt.ranker, zap.NewNop()).Select(context.Background(), Request{
				Requester:  requester(),
				Candidates: candidates,
				Language:   locale.English,
			})
			if err != nil {
				t.Fatalf("fallback must not fail: %v", err)
			}
			if !result.Fallback || result.State != StateFallback {
				t.Fatalf("expected fallback result, got %+v", result)
			}
			if result.SelectedProfile != candidates[0] {
				t.Fatalf("expected first candidate")
			}
			if result.MatchScore != FallbackScore || result.MatchType != ai.MatchTypeNearbyVibes {
				t.Fatalf("unexpected fallback values: %+v", result)
			}
			if len(result.SecondaryReasons) != 1 || result.SecondaryReasons[0] != "They might surprise you!" {
				t.Fatalf("unexpected secondary reasons %v", result.SecondaryReasons)
			}
		})
	}
}

func TestSelectTimeoutFallsBack(t *testing.T) {
	t.Parallel()

	ranker := &fakeRanker{decision: validDecision(1), delay: time.Second}
	s, err := New(ranker, Config{Timeout: 20 * time.Millisecond}, zap.NewNop())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	result, err := s.Select(context.Background(), Request{Requester: requester(), Candidates: candidateList(2), Language: locale.Greek})
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if !result.Fallback {
		t.Fatalf("expected fallback after timeout")
	}
	if !strings.Contains(result.PrimaryReason, "ίδια πόλη") {
		t.Fatalf("expected Greek fallback reason, got %q", result.PrimaryReason)
	}
}

func TestSelectSurfacedErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{name: "rate limited", err: fmt.Errorf("%w: status 429", ai.ErrUpstreamRateLimited)},
		{name: "not configured", err: fmt.Errorf("%w: key missing", ai.ErrUpstreamConfig)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := newSelector(t, &fakeRanker{err: tt.err}, zap.NewNop()).Select(context.Background(), Request{
				Requester:  requester(),
				Candidates: candidateList(2),
			})
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
			if result != nil {
				t.Fatalf("expected no result, got %+v", result)
			}
		})
	}
}

func TestSelectCanceledByCaller(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ranker := &fakeRanker{err: fmt.Errorf("%w: %w", ai.ErrUpstreamHTTP, context.Canceled)}
	_, err := newSelector(t, ranker, zap.NewNop()).Select(ctx, Request{Requester: requester(), Candidates: candidateList(1)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation to surface, got %v", err)
	}
}

// Not parallel: the anomaly counter is process wide.
func TestSelectIndexOutOfRangeLogsAnomaly(t *testing.T) {
	tests := []struct {
		name  string
		index int
	}{
		{name: "zero", index: 0},
		{name: "negative", index: -3},
		// 11 exists in the submitted list but not among the ranked ten.
		{name: "past the ranked candidates", index: 11},
		{name: "far past the list", index: 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, observed := observer.New(zapcore.WarnLevel)
			candidates := candidateList(12)
			before := testutil.ToFloat64(metrics.IndexAnomalies)

			result, err := newSelector(t, &fakeRanker{decision: validDecision(tt.index)}, zap.New(core)).Select(context.Background(), Request{
				Requester:  requester(),
				Candidates: candidates,
			})
			if err != nil {
				t.Fatalf("Select returned error: %v", err)
			}
			if result.SelectedProfile != candidates[0] || result.Fallback {
				t.Fatalf("expected clamped first candidate without fallback, got %+v", result)
			}

			entries := observed.FilterMessage("selected profile index out of range, using first candidate").All()
			if len(entries) != 1 {
				t.Fatalf("expected one anomaly warning, got %d", len(entries))
			}
			if entries[0].ContextMap()["index"] != int64(tt.index) {
				t.Fatalf("expected index field, got %v", entries[0].ContextMap())
			}

			if got := testutil.ToFloat64(metrics.IndexAnomalies) - before; got != 1 {
				t.Fatalf("expected the anomaly counter to grow by 1, got %v", got)
			}
		})
	}
}

func TestSelectRequiresRequester(t *testing.T) {
	t.Parallel()

	ranker := &fakeRanker{decision: validDecision(1)}
	_, err := newSelector(t, ranker, zap.NewNop()).Select(context.Background(), Request{Candidates: candidateList(1)})
	if err == nil {
		t.Fatalf("expected error for missing requester")
	}
	if ranker.calls() != 0 {
		t.Fatalf("ranker must not be called without a requester")
	}
}

func TestClampScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want int
	}{
		{in: 12, want: MinScore},
		{in: 59.4, want: MinScore},
		{in: 60, want: 60},
		{in: 84.5, want: 85},
		{in: 100.2, want: 100},
		{in: 250, want: MaxScore},
		{in: 1e20, want: MaxScore},
		{in: -1e20, want: MinScore},
	}

	for _, tt := range tests {
		if got := ClampScore(tt.in); got != tt.want {
			t.Fatalf("ClampScore(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSecondaryReasonsTrimmed(t *testing.T) {
	t.Parallel()

	got := secondaryReasons([]string{" a ", "", "b", "c", "d"})
	if len(got) != MaxSecondaryReasons || got[0] != "a" || got[2] != "c" {
		t.Fatalf("unexpected reasons %v", got)
	}

	if got := secondaryReasons(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestNewRequiresRanker(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, Config{}, nil); err == nil {
		t.Fatalf("expected error for nil ranker")
	}
}
