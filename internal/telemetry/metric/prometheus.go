package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Validation outcomes used as the "outcome" label.
const (
	OutcomeAccepted       = "accepted"
	OutcomeMissingAuth    = "missing_auth"
	OutcomeInvalidToken   = "invalid_token"
	OutcomeUnparsableBody = "unparsable_body"
	OutcomeRateLimited    = "rate_limited"
)

// Registry holds all application metrics on a private Prometheus registry.
type Registry struct {
	validationsTotal    *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	configReloads       *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates the reqguard metrics and registers them together with
// the Go runtime and process collectors.
func NewRegistry() *Registry {
	registry := prometheus.NewRegistry()

	r := &Registry{
		validationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reqguard_validations_total",
				Help: "Total number of request validations by outcome",
			},
			[]string{"outcome"},
		),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reqguard_http_requests_total",
				Help: "Total number of HTTP requests by method and status",
			},
			[]string{"method", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reqguard_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),

		configReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reqguard_config_reloads_total",
				Help: "Total number of configuration reloads by status",
			},
			[]string{"status"},
		),

		registry: registry,
	}

	registry.MustRegister(
		r.validationsTotal,
		r.httpRequestsTotal,
		r.httpRequestDuration,
		r.configReloads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// RecordValidation counts one validation outcome.
func (r *Registry) RecordValidation(outcome string) {
	r.validationsTotal.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest records a completed HTTP request.
func (r *Registry) RecordHTTPRequest(method string, status int, duration time.Duration) {
	r.httpRequestsTotal.WithLabelValues(method, statusLabel(status)).Inc()
	r.httpRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordConfigReload counts a config reload attempt ("success" or "error").
func (r *Registry) RecordConfigReload(status string) {
	r.configReloads.WithLabelValues(status).Inc()
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Prometheus returns the underlying registry.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

func statusLabel(status int) string {
	if status <= 0 {
		status = http.StatusOK
	}
	switch {
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
