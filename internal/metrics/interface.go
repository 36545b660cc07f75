package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector abstracts the metric operations used by the chat pipeline.
// Implemented by *Metrics; tests substitute a no-op implementation.
type Collector interface {
	// IncrementTurns increments the turn counter with a terminal status label.
	IncrementTurns(status string)

	// RecordStageDuration records the elapsed time of one turn stage.
	RecordStageDuration(start time.Time, stage string)

	// ObserveRetrievedChunks records how many chunks a retrieval returned.
	ObserveRetrievedChunks(n int)

	// AddGenerationTokens adds the token usage reported by a completion.
	AddGenerationTokens(n int)

	// Dynamic metric factories.

	CreateCounter(name, help string, labels []string) *prometheus.CounterVec
	CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec
	CreateGauge(name, help string, labels []string) *prometheus.GaugeVec
}
