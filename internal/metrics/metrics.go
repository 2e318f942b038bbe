// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// GenerationBuckets cover text-generation latencies from 100ms to 2 minutes.
var GenerationBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// HTTPRequestsTotal counts requests by route pattern, method and status code.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codetranslator_http_requests_total",
			Help: "HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPRequestDuration records request duration in seconds by route pattern.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codetranslator_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// GenerationsTotal counts backend calls by provider, model and outcome.
	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codetranslator_generations_total",
			Help: "Text-generation backend calls",
		},
		[]string{"provider", "model", "outcome"},
	)

	// GenerationLatency records backend latency in seconds.
	GenerationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "codetranslator_generation_latency_seconds",
			Help:    "Text-generation backend latency",
			Buckets: GenerationBuckets,
		},
		[]string{"provider", "model"},
	)

	// ExecutionsTotal counts script runs by outcome (ok, script_failure, spawn_failure).
	ExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "codetranslator_executions_total",
			Help: "Script executions",
		},
		[]string{"outcome"},
	)

	// ExecutionDuration records script run duration in seconds.
	ExecutionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "codetranslator_execution_duration_seconds",
			Help:    "Script execution duration",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		GenerationsTotal,
		GenerationLatency,
		ExecutionsTotal,
		ExecutionDuration,
	)
}
