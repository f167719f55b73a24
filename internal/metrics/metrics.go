package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Backend API Metrics
	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_backend_requests_total",
			Help: "Backend requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"}, // outcome: "ok", "http_error", "unreachable", "rejected"
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_backend_request_duration_seconds",
			Help:    "Latency of backend requests that reached the network",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"endpoint"},
	)

	// Response Cache Metrics
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_cache_lookups_total",
			Help: "Response cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marquee_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Presentation Metrics
	PageRenders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_page_renders_total",
			Help: "Pages built by surface and view",
		},
		[]string{"surface", "view"}, // surface: "tui", "web"
	)

	PageWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_page_warnings_total",
			Help: "Pages that ended a section with a warning",
		},
		[]string{"view"},
	)
)
