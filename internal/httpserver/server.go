// Package httpserver exposes matching, reactions and marketplace sign-up over
// HTTP.
package httpserver

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/momster-match/internal/profile"
	"github.com/spigell/momster-match/internal/reactions"
	"github.com/spigell/momster-match/internal/selector"
)

const (
	defaultCandidateLimit = 50
	defaultRateLimit      = 60
	maxBodyBytes          = 1 << 20
)

type Matcher interface {
	Select(ctx context.Context, req selector.Request) (*selector.Result, error)
}

type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*profile.Profile, error)
	ListCandidates(ctx context.Context, excludeID string, limit int) (*profile.Profiles, error)
	ListReactions(ctx context.Context, questionID string) ([]reactions.Row, error)
}

type ConfirmationSender interface {
	SendConfirmation(ctx context.Context, address string) (string, error)
}

type Config struct {
	// CandidateLimit caps how many profiles are read from the store per match.
	CandidateLimit int
	// ExcludedProfiles are never offered as a match.
	ExcludedProfiles []string
	// RateLimit is the number of API requests allowed per client IP per minute.
	RateLimit int
}

type Server struct {
	cfg    Config
	logger *zap.Logger

	Matcher Matcher
	// Store and Mailer are optional. Routes that need a missing dependency
	// answer 503.
	Store  ProfileStore
	Mailer ConfirmationSender

	started time.Time
}

func New(cfg Config, matcher Matcher, logger *zap.Logger) (*Server, error) {
	if matcher == nil {
		return nil, errors.New("matcher is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = defaultCandidateLimit
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}

	return &Server{
		cfg:     cfg,
		logger:  logger,
		Matcher: matcher,
		started: time.Now(),
	}, nil
}
