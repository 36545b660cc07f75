package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IncrementTurns increments the turn counter with a terminal status label
// ("completed", "quota_exceeded", "timeout", ...).
func (m *Metrics) IncrementTurns(status string) {
	m.turnsTotal.WithLabelValues(status).Inc()
}

// RecordStageDuration records the elapsed time of one turn stage.
// Example: defer metrics.RecordStageDuration(time.Now(), "generate")
func (m *Metrics) RecordStageDuration(start time.Time, stage string) {
	m.turnStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// ObserveRetrievedChunks records how many chunks a retrieval returned.
func (m *Metrics) ObserveRetrievedChunks(n int) {
	m.retrievedChunks.Observe(float64(n))
}

// AddGenerationTokens adds the token usage reported by a completion.
func (m *Metrics) AddGenerationTokens(n int) {
	if n > 0 {
		m.generationTokens.Add(float64(n))
	}
}

// CreateCounter registers and returns an ad-hoc CounterVec.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
	m.Registry.MustRegister(counter)
	return counter
}

// CreateHistogram registers and returns an ad-hoc HistogramVec.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, labels)
	m.Registry.MustRegister(hist)
	return hist
}

// CreateGauge registers and returns an ad-hoc GaugeVec.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels)
	m.Registry.MustRegister(gauge)
	return gauge
}
