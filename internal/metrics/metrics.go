package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "momster_match_outcomes_total",
			Help: "Total number of match requests by terminal state",
		},
		[]string{"outcome"},
	)

	RankerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "momster_ranker_requests_total",
			Help: "Total number of ranking calls by backend and result",
		},
		[]string{"ranker", "result"},
	)

	RankerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "momster_ranker_duration_seconds",
			Help:    "Ranking call duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"ranker"},
	)

	IndexAnomalies = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "momster_ranker_index_anomalies_total",
			Help: "Ranking decisions whose profile index was outside the candidate list",
		},
	)

	MatchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "momster_match_score",
			Help:    "Distribution of returned match scores",
			Buckets: []float64{60, 65, 70, 75, 80, 85, 90, 95, 100},
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "momster_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "momster_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"route", "method"},
	)
)

func ObserveOutcome(outcome string, score int) {
	MatchOutcomes.WithLabelValues(outcome).Inc()
	if score > 0 {
		MatchScores.Observe(float64(score))
	}
}

func ObserveRanker(ranker, result string, elapsed time.Duration) {
	RankerRequests.WithLabelValues(ranker, result).Inc()
	RankerDuration.WithLabelValues(ranker).Observe(elapsed.Seconds())
}

func IndexAnomaly() {
	IndexAnomalies.Inc()
}

// HTTPMiddleware records request counts and latency per chi route pattern.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := ""
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = "unmatched"
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
