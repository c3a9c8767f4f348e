// Package metrics provides Prometheus collectors for the consensus
// engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's Prometheus collectors. A nil *Metrics is
// valid and records nothing, so components can be wired without
// observability in tests.
type Metrics struct {
	modelCalls     *prometheus.CounterVec
	modelCallDur   *prometheus.HistogramVec
	runsTotal      *prometheus.CounterVec
	judgeFallbacks prometheus.Counter
}

// New creates and registers the engine collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		modelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "veridex",
			Name:      "model_calls_total",
			Help:      "Model backend calls by backend and outcome.",
		}, []string{"backend", "outcome"}),
		modelCallDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "veridex",
			Name:      "model_call_duration_seconds",
			Help:      "Model backend call latency.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"backend"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "veridex",
			Name:      "runs_total",
			Help:      "Debate runs by terminal status.",
		}, []string{"status"}),
		judgeFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "veridex",
			Name:      "judge_fallbacks_total",
			Help:      "Judge calls that fell back to the secondary model.",
		}),
	}
	reg.MustRegister(m.modelCalls, m.modelCallDur, m.runsTotal, m.judgeFallbacks)
	return m
}

// ObserveModelCall records one backend call.
func (m *Metrics) ObserveModelCall(backend, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.modelCalls.WithLabelValues(backend, outcome).Inc()
	m.modelCallDur.WithLabelValues(backend).Observe(dur.Seconds())
}

// ObserveRun records a terminal run status.
func (m *Metrics) ObserveRun(status string) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(status).Inc()
}

// ObserveJudgeFallback records one fallback-judge attempt.
func (m *Metrics) ObserveJudgeFallback() {
	if m == nil {
		return
	}
	m.judgeFallbacks.Inc()
}
