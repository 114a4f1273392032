// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// GenerationDuration tracks generation backend call duration.
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_duration_seconds",
			Help:    "Generation backend call duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 15, 30},
		},
		[]string{"provider", "status"},
	)

	// GenerationTokensTotal tracks generation tokens processed.
	GenerationTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_tokens_total",
			Help: "Total generation tokens processed",
		},
		[]string{"provider", "direction"},
	)

	// CacheEventsTotal tracks response cache lookups.
	CacheEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_events_total",
			Help: "Response cache lookups by result",
		},
		[]string{"result"},
	)

	// ThrottledTotal tracks requests rejected by the per-tenant limiter.
	ThrottledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_throttled_total",
			Help: "Chat requests rejected by the per-tenant rate limiter",
		},
		[]string{"tenant_id"},
	)

	// CaptureSessionsTotal tracks lead-capture session outcomes.
	CaptureSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capture_sessions_total",
			Help: "Lead-capture sessions by outcome",
		},
		[]string{"tenant_id", "outcome"},
	)

	// LeadsRecordedTotal tracks recorded leads.
	LeadsRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_recorded_total",
			Help: "Leads recorded by source",
		},
		[]string{"tenant_id", "source"},
	)

	// BackgroundJobsTotal tracks background side-effect jobs.
	BackgroundJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "background_jobs_total",
			Help: "Background jobs by name and status",
		},
		[]string{"job", "status"},
	)

	// BackgroundQueueDepth tracks the background pool queue depth.
	BackgroundQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "background_queue_depth",
			Help: "Number of background jobs waiting for a worker",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordGeneration records metrics for a generation backend call.
func RecordGeneration(provider, status string, duration float64, tokensIn, tokensOut int) {
	GenerationDuration.WithLabelValues(provider, status).Observe(duration)
	GenerationTokensTotal.WithLabelValues(provider, "in").Add(float64(tokensIn))
	GenerationTokensTotal.WithLabelValues(provider, "out").Add(float64(tokensOut))
}
