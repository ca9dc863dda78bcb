// Package metrics provides Prometheus metrics collection for HTTP server
// and analysis pipeline monitoring. It exports metrics for tracking HTTP
// request performance:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// and for the report pipeline:
//   - analysis_reports_total: Counter with report source label
//   - analysis_duration_seconds: Histogram with report source label
//   - generative_fallbacks_total: Counter with fallback reason label
//
// All metrics are automatically registered with the Prometheus default
// registry during package initialization.
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

	AnalysisReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_reports_total",
			Help: "Completed analyses by report source",
		},
		[]string{"source"},
	)

	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "End-to-end analysis latency by report source",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"source"},
	)

	GenerativeFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generative_fallbacks_total",
			Help: "Generative attempts absorbed by the rules-based fallback, by reason",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(AnalysisReportsTotal)
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(GenerativeFallbacksTotal)
}
