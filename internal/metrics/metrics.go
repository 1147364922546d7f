// Package metrics exposes per-cycle counters on a private Prometheus
// registry. All recording methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hamed0406/miradors/internal/domain"
)

const namespace = "miradors"

// Cycle results.
const (
	ResultHealthy     = "healthy"
	ResultUnhealthy   = "unhealthy"
	ResultConfigError = "config_error"
)

type Metrics struct {
	registry *prometheus.Registry

	cycles         *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
	probeDuration  *prometheus.HistogramVec
	dispatches     *prometheus.CounterVec
	failingTargets prometheus.Gauge
	lastCycle      prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Monitoring cycles by result.",
		}, []string{"result"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall-clock time of a full cycle, excluding the sleep.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Latency of single target probes by outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_total",
			Help:      "Alert send attempts by status.",
		}, []string{"status"}),
		failingTargets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "failing_targets",
			Help:      "Size of the failure set of the last completed cycle.",
		}),
		lastCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix time the last cycle started.",
		}),
	}

	m.registry.MustRegister(
		m.cycles,
		m.cycleDuration,
		m.probeDuration,
		m.dispatches,
		m.failingTargets,
		m.lastCycle,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveProbe(r domain.CheckResult) {
	if m == nil {
		return
	}
	m.probeDuration.WithLabelValues(r.Outcome.String()).Observe(r.Latency.Seconds())
}

// ObserveCycle records a completed cycle.
func (m *Metrics) ObserveCycle(rep domain.CycleReport) {
	if m == nil {
		return
	}
	result := ResultHealthy
	if !rep.Healthy() {
		result = ResultUnhealthy
	}
	m.cycles.WithLabelValues(result).Inc()
	m.cycleDuration.Observe(rep.Duration.Seconds())
	m.failingTargets.Set(float64(len(rep.Failures)))
	m.lastCycle.Set(float64(rep.StartedAt.Unix()))

	if rep.Dispatched {
		status := "sent"
		if rep.DispatchErr != "" {
			status = "failed"
		}
		m.dispatches.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) ConfigError(at time.Time) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(ResultConfigError).Inc()
	m.lastCycle.Set(float64(at.Unix()))
}
