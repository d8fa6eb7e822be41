package ai

import (
	"context"
	"errors"
)

// Upstream failure taxonomy. Only ErrUpstreamConfig and ErrUpstreamRateLimited
// are meant to reach the caller; the rest are absorbed by the fallback match.
var (
	ErrUpstreamConfig      = errors.New("ranking service is not configured")
	ErrUpstreamRateLimited = errors.New("ranking service rate limited")
	ErrUpstreamHTTP        = errors.New("ranking service request failed")
	ErrUpstreamMalformed   = errors.New("ranking service returned a malformed decision")
)

// ToolName is the function the ranking service is forced to call.
const ToolName = "select_best_match"

const toolDescription = "Select the best matching mom and provide warm, human reasons"

type MatchType string

const (
	MatchTypeSameStage       MatchType = "same_stage"
	MatchTypeSimilarMood     MatchType = "similar_mood"
	MatchTypeCommonSchedule  MatchType = "common_schedule"
	MatchTypeSharedInterests MatchType = "shared_interests"
	MatchTypeNearbyVibes     MatchType = "nearby_vibes"
)

var matchTypes = []MatchType{
	MatchTypeSameStage,
	MatchTypeSimilarMood,
	MatchTypeCommonSchedule,
	MatchTypeSharedInterests,
	MatchTypeNearbyVibes,
}

func MatchTypes() []MatchType {
	out := make([]MatchType, len(matchTypes))
	copy(out, matchTypes)
	return out
}

func (m MatchType) Valid() bool {
	for _, t := range matchTypes {
		if t == m {
			return true
		}
	}
	return false
}

// RankRequest carries the rendered prompts. CandidateCount is the number of
// numbered candidates in Document.
type RankRequest struct {
	SystemPrompt   string
	Document       string
	CandidateCount int
	Language       string
}

// Decision is the structured reply of a ranking service. The index is 1-based
// and not yet validated against the candidate list.
type Decision struct {
	SelectedProfileIndex int       `mapstructure:"selectedProfileIndex"`
	MatchScore           float64   `mapstructure:"matchScore"`
	PrimaryReason        string    `mapstructure:"primaryReason"`
	SecondaryReasons     []string  `mapstructure:"secondaryReasons"`
	MatchType            MatchType `mapstructure:"matchType"`
	Raw                  string    `mapstructure:"-"`
}

type Ranker interface {
	Name() string
	Rank(ctx context.Context, req *RankRequest) (*Decision, error)
}
