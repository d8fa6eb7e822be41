// Package store is a read-only client for the PostgREST endpoint in front of
// the profiles database.
package store

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	restPrefix = "/rest/v1"
	userAgent  = "spigell/momster-match"

	profilesTable  = "profiles"
	reactionsTable = "question_reactions"

	defaultTimeout       = 10 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = 200 * time.Millisecond
	defaultCandidates    = 50
)

var ErrNotFound = errors.New("not found")

type Config struct {
	URL           string
	APIKey        string
	Timeout       time.Duration
	MaxRetries    uint64
	RetryInterval time.Duration
}

type Client struct {
	apiKey        string
	logger        *zap.Logger
	maxRetries    uint64
	retryInterval time.Duration

	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(cfg Config, logger *zap.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, errors.New("store url is not configured")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("store api key is not configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = defaultMaxRetries
	}
	interval := cfg.RetryInterval
	if interval <= 0 {
		interval = defaultRetryInterval
	}

	return &Client{
		apiKey:        strings.TrimSpace(cfg.APIKey),
		logger:        logger,
		maxRetries:    retries,
		retryInterval: interval,
		HTTPClient:    &http.Client{Timeout: timeout},
		UserAgent:     userAgent,
		APIURL:        base + restPrefix,
	}, nil
}
