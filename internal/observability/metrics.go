// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the portfolio server.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values shared by the auth and sync counters.
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	// RequestsTotal counts HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_http_requests_total",
			Help: "HTTP requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// LoginsTotal counts login attempts by outcome.
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_auth_logins_total",
			Help: "Admin login attempts",
		},
		[]string{"outcome"},
	)

	// SetupAttemptsTotal counts first-run setup attempts by outcome.
	SetupAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_setup_attempts_total",
			Help: "First-run setup attempts",
		},
		[]string{"outcome"},
	)

	// ShowcaseSyncsTotal counts GitHub showcase syncs by outcome.
	ShowcaseSyncsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_showcase_syncs_total",
			Help: "GitHub showcase syncs",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		LoginsTotal,
		SetupAttemptsTotal,
		ShowcaseSyncsTotal,
	)
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
