package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spigell/momster-match/internal/ai"
	"github.com/spigell/momster-match/internal/mailer"
	"github.com/spigell/momster-match/internal/store"
)

const (
	msgNoProfiles  = "No profiles available"
	msgRateLimited = "Rate limited, please try again later"
	msgBadEmail    = "Invalid email address"
)

var (
	errBadRequest  = errors.New("bad request")
	errUnavailable = errors.New("not configured")
)

type errorResponse struct {
	Error string `json:"error"`
}

type noProfilesResponse struct {
	Error      string `json:"error"`
	Matches    []any  `json:"matches"`
	NoProfiles bool   `json:"noProfiles"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeNoProfiles(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, noProfilesResponse{Error: msgNoProfiles, Matches: []any{}, NoProfiles: true})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	switch {
	case errors.Is(err, ai.ErrUpstreamRateLimited):
		status, message = http.StatusTooManyRequests, msgRateLimited
	case errors.Is(err, mailer.ErrInvalidAddress):
		status, message = http.StatusBadRequest, msgBadEmail
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errUnavailable):
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, errorResponse{Error: message})
}
