// Package metrics exposes Prometheus instrumentation for the orchestrator.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requestsTotal      *prometheus.CounterVec
	fallbacksTotal     *prometheus.CounterVec
	breakerTransitions *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartmatch_requests_total",
				Help: "Matching requests by algorithm and outcome",
			},
			[]string{"algorithm", "outcome"},
		),
		fallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartmatch_fallbacks_total",
				Help: "Fallback executions by primary and replacement algorithm",
			},
			[]string{"from", "to"},
		),
		breakerTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartmatch_breaker_transitions_total",
				Help: "Circuit breaker state transitions",
			},
			[]string{"backend", "from", "to"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartmatch_request_duration_seconds",
				Help:    "End-to-end matching request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"algorithm"},
		),
	}

	m.registry.MustRegister(m.requestsTotal)
	m.registry.MustRegister(m.fallbacksTotal)
	m.registry.MustRegister(m.breakerTransitions)
	m.registry.MustRegister(m.requestDuration)
	return m
}

func (m *Metrics) ObserveRequest(algorithm, outcome string, seconds float64) {
	m.requestsTotal.WithLabelValues(algorithm, outcome).Inc()
	m.requestDuration.WithLabelValues(algorithm).Observe(seconds)
}

func (m *Metrics) ObserveFallback(from, to string) {
	m.fallbacksTotal.WithLabelValues(from, to).Inc()
}

func (m *Metrics) ObserveBreakerTransition(backend, from, to string) {
	m.breakerTransitions.WithLabelValues(backend, from, to).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
