package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/momster-match/internal/filtering"
	"github.com/spigell/momster-match/internal/locale"
	"github.com/spigell/momster-match/internal/logger"
	"github.com/spigell/momster-match/internal/matching"
	"github.com/spigell/momster-match/internal/profile"
	"github.com/spigell/momster-match/internal/selector"
)

const (
	PromptAccept     = "Accept this match"
	PromptAnother    = "Show me someone else"
	PromptCandidates = "List remaining candidates"
	PromptFilters    = "Show filters"
	PromptExit       = "Exit"
)

var errExit = errors.New("exit requested")

var matchPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptAccept, PromptAnother, PromptCandidates, PromptFilters, PromptExit},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Find the best match for a stored profile",
	Run: func(cmd *cobra.Command, _ []string) {
		runMatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("profile-id", "", "id of the profile to find a match for")
	matchCmd.Flags().StringP("language", "l", "el", "language of the match reasons (el or en)")
	matchCmd.Flags().BoolP("interactive", "i", false, "ask before accepting the match and allow picking someone else")
	matchCmd.MarkFlagRequired("profile-id")
}

func runMatch(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	st, err := newStore(config.Store, logger)
	if err != nil {
		logger.Fatal("building the profile store", zap.Error(err))
	}
	if st == nil {
		logger.Fatal("profile store is required", zap.String("hint", "set store.url or the SUPABASE_URL environment variable"))
	}

	sel, err := newSelector(ctx, config.Ranking, logger)
	if err != nil {
		logger.Fatal("building the selector", zap.Error(err))
	}

	profileID, _ := cmd.Flags().GetString("profile-id")
	language, _ := cmd.Flags().GetString("language")
	interactive, _ := cmd.Flags().GetBool("interactive")

	requester, err := st.GetProfile(ctx, profileID)
	if err != nil {
		logger.Fatal("loading the profile", zap.String("profile_id", profileID), zap.Error(err))
	}

	candidates, err := st.ListCandidates(ctx, requester.ID, config.Server.CandidateLimit)
	if err != nil {
		logger.Fatal("loading candidates", zap.Error(err))
	}

	logger.Info("loaded candidates", zap.Int("count", candidates.Len()))

	filters := filtering.New(filtering.Defaults(requester.ID, config.Filters.ExcludedProfiles), logger)
	candidates, err = filters.RunFilters(ctx, candidates)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	req := selector.Request{Requester: requester, Language: locale.Resolve(language)}

	for {
		req.Candidates = candidates.Items

		result, err := sel.Select(ctx, req)
		if errors.Is(err, matching.ErrNoCandidates) {
			logger.Info("exiting", zap.String("reason", "no candidates left"))
			return
		}
		if err != nil {
			logger.Fatal("matching failed", zap.Error(err))
		}

		report(logger, result)

		if !interactive {
			return
		}

		_, action, err := matchPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, filters, candidates, result); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, filters *filtering.Filtering, candidates *profile.Profiles, result *selector.Result) error {
	switch action {
	case PromptAccept:
		logger.Info("match accepted", zap.String("profile_id", result.SelectedProfile.ID))
		return errExit
	case PromptAnother:
		candidates.Exclude(profile.ProfileIDField, []string{result.SelectedProfile.ID})
		logger.Info("looking for someone else", zap.Int("candidates_left", candidates.Len()))
		return nil
	case PromptCandidates:
		logger.Info("remaining candidates", zap.Strings("names", candidates.Names()), zap.Int("count", candidates.Len()))
		return errExit
	case PromptFilters:
		pretty, _ := json.MarshalIndent(filters.Describe(), "", "  ")
		logger.Info(string(pretty))
		return errExit
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func report(logger *zap.Logger, result *selector.Result) {
	logger.Info("best match",
		zap.String("profile_id", result.SelectedProfile.ID),
		zap.String("name", result.SelectedProfile.FullName),
		zap.Int("score", result.MatchScore),
		zap.String("match_type", string(result.MatchType)),
		zap.String("reason", result.PrimaryReason),
		zap.String("more", strings.Join(result.SecondaryReasons, " | ")),
		zap.Bool("fallback", result.Fallback),
	)
}

// redacted returns a copy of config safe to log.
func redacted(config *Config) *Config {
	out := *config
	if config.Store != nil {
		s := *config.Store
		s.APIKey = mask(s.APIKey)
		out.Store = &s
	}
	if config.Ranking != nil {
		r := *config.Ranking
		if r.Gateway != nil {
			g := *r.Gateway
			g.APIKey = mask(g.APIKey)
			r.Gateway = &g
		}
		if r.Gemini != nil {
			g := *r.Gemini
			g.APIKey = mask(g.APIKey)
			r.Gemini = &g
		}
		out.Ranking = &r
	}
	return &out
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}
