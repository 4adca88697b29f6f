// Package metrics holds the Prometheus collectors of one process. Every
// method is safe to call on a nil *Metrics, which disables instrumentation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lidarcore"

// Metrics groups the collectors reported by the data store, the Monte Carlo
// engine and the pipeline runner.
type Metrics struct {
	storeReads    *prometheus.CounterVec
	storeWrites   *prometheus.CounterVec
	samples       *prometheus.CounterVec
	mcDuration    prometheus.Histogram
	stageOutcomes *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		storeReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "datastore",
			Name:      "reads_total",
			Help:      "Data store reads by compartment and outcome.",
		}, []string{"compartment", "outcome"}),
		storeWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "datastore",
			Name:      "writes_total",
			Help:      "Data store writes by compartment.",
		}, []string{"compartment"}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "montecarlo",
			Name:      "samples_total",
			Help:      "Monte Carlo samples by outcome.",
		}, []string{"outcome"}),
		mcDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "montecarlo",
			Name:      "invocation_duration_seconds",
			Help:      "Wall time of one Monte Carlo invocation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		stageOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_outcomes_total",
			Help:      "Pipeline stage completions by stage and status kind.",
		}, []string{"stage", "kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.storeReads, m.storeWrites, m.samples, m.mcDuration, m.stageOutcomes)
	}
	return m
}

// StoreRead counts one data store read.
func (m *Metrics) StoreRead(compartment string, hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.storeReads.WithLabelValues(compartment, outcome).Inc()
}

// StoreWrite counts one data store write.
func (m *Metrics) StoreWrite(compartment string) {
	if m == nil {
		return
	}
	m.storeWrites.WithLabelValues(compartment).Inc()
}

// Sample counts one Monte Carlo sample outcome: "ok", "failed" or "excluded".
func (m *Metrics) Sample(outcome string) {
	if m == nil {
		return
	}
	m.samples.WithLabelValues(outcome).Inc()
}

// MonteCarloDone records the duration of one invocation.
func (m *Metrics) MonteCarloDone(d time.Duration) {
	if m == nil {
		return
	}
	m.mcDuration.Observe(d.Seconds())
}

// StageDone counts one stage completion.
func (m *Metrics) StageDone(stage, kind string) {
	if m == nil {
		return
	}
	m.stageOutcomes.WithLabelValues(stage, kind).Inc()
}
