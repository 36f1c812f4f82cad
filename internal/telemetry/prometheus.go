package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "betaplan"

// PrometheusMetrics implements Metrics on a private registry so that several
// instances (tests, embedded services) never collide on registration.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	queries    *prometheus.CounterVec
	expansions *prometheus.HistogramVec
	duration   *prometheus.HistogramVec
	rejected   *prometheus.CounterVec
}

// NewPrometheusMetrics registers the planner collectors plus the Go runtime
// and process collectors on a fresh registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &PrometheusMetrics{
		registry: registry,
		// Labels: status (solved, unreachable, budget_exceeded)
		queries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "planner",
			Name:      "queries_total",
			Help:      "Planning queries by outcome",
		}, []string{"status"}),
		expansions: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "planner",
			Name:      "expansions",
			Help:      "Search nodes expanded per query",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}, []string{"status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "planner",
			Name:      "duration_seconds",
			Help:      "Wall time spent per planning query",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"status"}),
		// Labels: reason (invalid_input, rate_limited, malformed, unsupported_version)
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "planner",
			Name:      "rejected_total",
			Help:      "Planning requests refused before search",
		}, []string{"reason"}),
	}
}

func (m *PrometheusMetrics) RecordQuery(status string, expansions int, duration time.Duration) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(status).Inc()
	m.expansions.WithLabelValues(status).Observe(float64(expansions))
	m.duration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordRejected(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
