package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus registry, the HTTP server exposing /metrics,
// and the built-in instruments for the chat pipeline.
type Metrics struct {
	// Server exposes the /metrics endpoint for Prometheus scraping.
	Server *http.Server

	// Registry is an isolated registry for this service; all metrics carry
	// a constant service label.
	Registry *prometheus.Registry

	turnsTotal        *prometheus.CounterVec
	turnStageDuration *prometheus.HistogramVec
	retrievedChunks   prometheus.Histogram
	generationTokens  prometheus.Counter
}

// NewMetrics builds a Metrics instance with a dedicated registry, the chat
// pipeline instruments, and (optionally) the standard Go/process collectors.
//
// Instruments:
//   - chat_turns_total{status}          completed/failed turns by reason code
//   - chat_turn_stage_seconds{stage}    retrieve/assemble/generate/persist latency
//   - chat_retrieved_chunks             chunks returned per retrieval
//   - chat_generation_tokens_total      tokens consumed by completions
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	wrapped := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry: registry,
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Total chat turns by terminal status",
		}, []string{"status"}),
		turnStageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chat_turn_stage_seconds",
			Help:    "Duration of each chat turn stage in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		retrievedChunks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chat_retrieved_chunks",
			Help:    "Number of chunks returned per retrieval",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
		generationTokens: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_generation_tokens_total",
			Help: "Total tokens reported by the completion provider",
		}),
	}

	wrapped.MustRegister(
		m.turnsTotal,
		m.turnStageDuration,
		m.retrievedChunks,
		m.generationTokens,
	)

	if cfg.EnableDefaultCollectors {
		wrapped.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	return m
}
