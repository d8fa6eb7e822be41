package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spigell/momster-match/internal/metrics"
)

var allowedHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

// Router wires middleware and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.Recoverer())
	r.Use(s.RequestID())
	r.Use(s.AccessLog())
	r.Use(metrics.HTTPMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: allowedHeaders,
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))

		v1.Post("/magic-match", s.MagicMatchHandler())
		v1.Get("/profiles/{id}/magic-match", s.ProfileMatchHandler())
		v1.Get("/questions/{id}/reactions", s.ReactionsHandler())
		v1.Post("/marketplace/confirmation", s.ConfirmationHandler())
	})

	r.Get("/healthz", s.HealthzHandler())
	r.Handle("/metrics", promhttp.Handler())

	return r
}
