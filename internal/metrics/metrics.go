// Package metrics registers the service's Prometheus collectors. The
// pipeline treats this as a side-effect sink; nothing here affects
// control flow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the service emits.
type Metrics struct {
	registry *prometheus.Registry

	RequestCount          *prometheus.CounterVec
	RequestDuration       *prometheus.HistogramVec
	TranscriptionCount    prometheus.Counter
	TranscriptionDuration prometheus.Histogram
	GenerationCount       prometheus.Counter
	GenerationDuration    prometheus.Histogram
	QuestionDetectedCount prometheus.Counter
	ActiveSessions        prometheus.Gauge
	ErrorCount            *prometheus.CounterVec
}

// New creates and registers all collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		RequestCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "endpoint", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),

		TranscriptionCount: factory.NewCounter(prometheus.CounterOpts{
			Name: "transcriptions_total",
			Help: "Total transcriptions performed",
		}),

		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "transcription_duration_seconds",
			Help:    "Transcription processing time",
			Buckets: prometheus.DefBuckets,
		}),

		GenerationCount: factory.NewCounter(prometheus.CounterOpts{
			Name: "generations_total",
			Help: "Total answer generations",
		}),

		GenerationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "generation_duration_seconds",
			Help:    "Answer generation processing time",
			Buckets: prometheus.DefBuckets,
		}),

		QuestionDetectedCount: factory.NewCounter(prometheus.CounterOpts{
			Name: "questions_detected_total",
			Help: "Total questions detected",
		}),

		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Number of active sessions",
		}),

		ErrorCount: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total errors",
		}, []string{"error_type", "endpoint"}),
	}
}

// Handler serves the exposition endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordError bumps the error counter for one error type and endpoint.
func (m *Metrics) RecordError(errorType, endpoint string) {
	m.ErrorCount.WithLabelValues(errorType, endpoint).Inc()
}
