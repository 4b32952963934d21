// Package metrics defines the Prometheus collectors exported by the service.
// A nil *Metrics is valid and records nothing, which keeps tests and the CLI
// free of registry plumbing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recruiter"

// Attempt outcomes recorded by the generation client.
const (
	OutcomeSuccess   = "success"
	OutcomeTransient = "transient"
	OutcomeUpstream  = "upstream"
	OutcomeInvalid   = "invalid"
	OutcomeCanceled  = "canceled"
)

// Metrics groups the collectors and the registry they are registered on.
type Metrics struct {
	registry *prometheus.Registry

	attempts          *prometheus.CounterVec
	duration          *prometheus.HistogramVec
	rejections        prometheus.Counter
	trackedIdentities prometheus.Gauge
}

// New creates the collectors on a private registry, along with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "attempts_total",
			Help:      "Outbound generation attempts by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Latency of logical generation operations, retries included.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60, 90},
		}, []string{"operation", "result"}),
		rejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ratelimit",
			Name:      "rejections_total",
			Help:      "Requests rejected by the admission gate.",
		}),
		trackedIdentities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ratelimit",
			Name:      "tracked_identities",
			Help:      "Client identities currently tracked by the admission gate.",
		}),
	}
	reg.MustRegister(
		m.attempts,
		m.duration,
		m.rejections,
		m.trackedIdentities,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAttempt(outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveOperation(operation string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "error"
	if ok {
		result = "ok"
	}
	m.duration.WithLabelValues(operation, result).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRejection() {
	if m == nil {
		return
	}
	m.rejections.Inc()
}

func (m *Metrics) SetTrackedIdentities(n int) {
	if m == nil {
		return
	}
	m.trackedIdentities.Set(float64(n))
}
