package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/momster-match/internal/ai"
	"github.com/spigell/momster-match/internal/ai/gateway"
	"github.com/spigell/momster-match/internal/ai/gemini"
	"github.com/spigell/momster-match/internal/mailer"
	"github.com/spigell/momster-match/internal/secrets"
	"github.com/spigell/momster-match/internal/selector"
	"github.com/spigell/momster-match/internal/store"
)

const (
	envGatewayKey = "LOVABLE_API_KEY"
	envGeminiKey  = "GEMINI_API_KEY"
	envStoreKey   = "SUPABASE_SERVICE_ROLE_KEY"
)

// newRanker builds the configured ranking backend. A missing API key is not
// fatal here; the ranker then answers every call with ai.ErrUpstreamConfig.
func newRanker(ctx context.Context, cfg *RankingConfig, logger *zap.Logger) (ai.Ranker, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	switch provider {
	case "", gateway.Provider:
		gw := cfg.Gateway
		if gw == nil {
			gw = &GatewayConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gateway api key",
			Value: gw.APIKey,
			File:  gw.APIKeyFile,
			Env:   envGatewayKey,
		})
		if err != nil {
			logger.Warn("ranking disabled until a key is configured", zap.Error(err))
		}

		return gateway.New(gateway.Config{
			APIKey:       apiKey,
			BaseURL:      gw.BaseURL,
			Model:        gw.Model,
			Timeout:      cfg.Timeout,
			MaxLogLength: cfg.MaxLogLength,
		}, logger), nil

	case gemini.Provider:
		gm := cfg.Gemini
		if gm == nil {
			gm = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: gm.APIKey,
			File:  gm.APIKeyFile,
			Env:   envGeminiKey,
		})
		if err != nil {
			logger.Warn("ranking disabled until a key is configured", zap.Error(err))
		}

		ranker, err := gemini.New(ctx, gemini.Config{
			APIKey:       apiKey,
			Model:        gm.Model,
			MaxLogLength: cfg.MaxLogLength,
		}, logger)
		if err != nil {
			return nil, err
		}
		return ranker, nil

	default:
		return nil, fmt.Errorf("unsupported ranking provider: %s", cfg.Provider)
	}
}

func newSelector(ctx context.Context, cfg *RankingConfig, logger *zap.Logger) (*selector.Selector, error) {
	ranker, err := newRanker(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return selector.New(ranker, selector.Config{Timeout: cfg.Timeout}, logger)
}

// newStore returns nil without an error when no store url is configured.
func newStore(cfg *StoreConfig, logger *zap.Logger) (*store.Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.URL) == "" {
		return nil, nil
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "store api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   envStoreKey,
	})
	if err != nil {
		return nil, err
	}

	return store.New(store.Config{
		URL:        cfg.URL,
		APIKey:     apiKey,
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
	}, logger)
}

// newMailer returns nil without an error when the mailer section is absent.
func newMailer(ctx context.Context, cfg *MailerConfig, logger *zap.Logger) (*mailer.Mailer, error) {
	if cfg == nil {
		return nil, nil
	}
	return mailer.NewSES(ctx, mailer.Config{Region: cfg.Region, From: cfg.From}, logger)
}
