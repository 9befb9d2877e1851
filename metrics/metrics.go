// Package metrics provides Prometheus metrics for the interactions API.
// HTTP metrics:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// Domain metrics:
//   - ddi_classifications_total: Counter with type, severity, and tier labels
//   - ddi_narratives_total: Counter with audience and source labels
//   - ddi_provider_request_duration_seconds: Histogram with provider and outcome labels
//   - ddi_provider_breaker_state: Gauge per provider (0 closed, 1 half-open, 2 open)
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in last ~5 minutes)",
		},
	)

	ClassificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddi_classifications_total",
			Help: "Drug pair classifications by result and decision tier",
		},
		[]string{"type", "severity", "tier"},
	)

	NarrativesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddi_narratives_total",
			Help: "Narratives produced by audience and source",
		},
		[]string{"audience", "source"},
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ddi_provider_request_duration_seconds",
			Help:    "Text generation provider latency",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider", "outcome"},
	)

	ProviderBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ddi_provider_breaker_state",
			Help: "Circuit breaker state per provider (0 closed, 1 half-open, 2 open)",
		},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(ClassificationsTotal)
	prometheus.MustRegister(NarrativesTotal)
	prometheus.MustRegister(ProviderRequestDuration)
	prometheus.MustRegister(ProviderBreakerState)
}
