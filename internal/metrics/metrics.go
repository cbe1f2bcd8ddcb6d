package metrics

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/bgskoro21/ecommerce-be/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Mailer metrics

	EmailsDispatchedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecommerce",
		Name:      "emails_dispatched_total",
		Help:      "Pending email-log entries processed, by outcome.",
	}, []string{"outcome"})

	MailerTickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ecommerce",
		Name:      "mailer_tick_duration_seconds",
		Help:      "Time taken for one mailer tick.",
		Buckets:   prometheus.DefBuckets,
	})

	// Auth metrics

	TokenPairsIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ecommerce",
		Name:      "token_pairs_issued_total",
		Help:      "Access/refresh token pairs issued (login, refresh, OAuth).",
	})

	RefreshRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ecommerce",
		Name:      "refresh_rejected_total",
		Help:      "Refresh attempts rejected as invalid, expired or rotated-out.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ecommerce",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecommerce",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		EmailsDispatchedTotal,
		MailerTickDuration,
		TokenPairsIssuedTotal,
		RefreshRejectedTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics plus liveness/readiness probes on a
// dedicated port, away from the public API.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		result := checker.Readiness(r.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, result)
	})

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
