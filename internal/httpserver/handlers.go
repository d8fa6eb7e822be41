package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spigell/momster-match/internal/filtering"
	"github.com/spigell/momster-match/internal/locale"
	"github.com/spigell/momster-match/internal/logger"
	"github.com/spigell/momster-match/internal/matching"
	"github.com/spigell/momster-match/internal/profile"
	"github.com/spigell/momster-match/internal/reactions"
	"github.com/spigell/momster-match/internal/selector"
)

var validate = validator.New()

type magicMatchRequest struct {
	CurrentProfile   *profile.Profile   `json:"currentProfile" validate:"required"`
	PotentialMatches []*profile.Profile `json:"potentialMatches" validate:"omitempty,dive,required"`
	Language         string             `json:"language" validate:"omitempty,max=64"`
}

type confirmationRequest struct {
	Email string `json:"email"`
}

type confirmationResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
}

// MagicMatchHandler matches a requester against the candidates posted by the
// client. The posted list is used as is.
func (s *Server) MagicMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

		var req magicMatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, fmt.Errorf("%w: invalid json", errBadRequest))
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, fmt.Errorf("%w: %s", errBadRequest, validationMessage(err)))
			return
		}

		s.respondMatch(w, r, selector.Request{
			Requester:  req.CurrentProfile,
			Candidates: req.PotentialMatches,
			Language:   locale.Resolve(req.Language),
		})
	}
}

// ProfileMatchHandler loads the requester and recent profiles from the store,
// filters them and runs a match.
func (s *Server) ProfileMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Store == nil {
			writeError(w, fmt.Errorf("profile store %w", errUnavailable))
			return
		}

		ctx := r.Context()
		id := chi.URLParam(r, "id")

		requester, err := s.Store.GetProfile(ctx, id)
		if err != nil {
			writeError(w, err)
			return
		}

		candidates, err := s.Store.ListCandidates(ctx, requester.ID, s.cfg.CandidateLimit)
		if err != nil {
			writeError(w, err)
			return
		}

		log := logger.FromContext(ctx, s.logger)
		candidates, err = filtering.New(filtering.Defaults(requester.ID, s.cfg.ExcludedProfiles), log).RunFilters(ctx, candidates)
		if err != nil {
			writeError(w, err)
			return
		}

		s.respondMatch(w, r, selector.Request{
			Requester:  requester,
			Candidates: candidates.Items,
			Language:   locale.Resolve(languageParam(r)),
		})
	}
}

func (s *Server) respondMatch(w http.ResponseWriter, r *http.Request, req selector.Request) {
	result, err := s.Matcher.Select(r.Context(), req)
	switch {
	case errors.Is(err, matching.ErrNoCandidates):
		writeNoProfiles(w)
	case err != nil:
		logger.FromContext(r.Context(), s.logger).Error("match failed", zap.Error(err))
		writeError(w, err)
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

// ReactionsHandler returns the reaction counters of a question as seen by the
// optional user_id viewer.
func (s *Server) ReactionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Store == nil {
			writeError(w, fmt.Errorf("profile store %w", errUnavailable))
			return
		}

		rows, err := s.Store.ListReactions(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, reactions.Aggregate(rows, strings.TrimSpace(r.URL.Query().Get("user_id"))))
	}
}

// ConfirmationHandler mails the marketplace waitlist confirmation.
func (s *Server) ConfirmationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Mailer == nil {
			writeError(w, fmt.Errorf("mailer %w", errUnavailable))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

		var req confirmationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, fmt.Errorf("%w: invalid json", errBadRequest))
			return
		}

		id, err := s.Mailer.SendConfirmation(r.Context(), req.Email)
		if err != nil {
			logger.FromContext(r.Context(), s.logger).Warn("marketplace confirmation failed", zap.Error(err))
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, confirmationResponse{Success: true, MessageID: id})
	}
}

func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"uptime": time.Since(s.started).Round(time.Second).String(),
		})
	}
}

func languageParam(r *http.Request) string {
	if lang := strings.TrimSpace(r.URL.Query().Get("language")); lang != "" {
		return lang
	}
	return r.Header.Get("Accept-Language")
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
