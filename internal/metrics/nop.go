package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Nop is a Collector that records nothing. Used by tests and by callers
// running without a metrics endpoint.
type Nop struct{}

var _ Collector = Nop{}

func (Nop) IncrementTurns(string)                 {}
func (Nop) RecordStageDuration(time.Time, string) {}
func (Nop) ObserveRetrievedChunks(int)            {}
func (Nop) AddGenerationTokens(int)               {}

func (Nop) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
}

func (Nop) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: name, Help: help, Buckets: buckets}, labels)
}

func (Nop) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels)
}
