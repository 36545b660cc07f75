package ingest

import (
	"os"
	"strconv"
)

// Config tunes chunking and indexing.
type Config struct {
	// Chunk size envelope, in characters.
	ChunkSize    int
	OverlapSize  int
	MinChunkSize int
	MaxChunkSize int

	// EmbedBatchSize is how many chunk texts go to the embedding
	// provider per request.
	EmbedBatchSize int

	// EmbedWorkers bounds how many embedding batches run in parallel.
	EmbedWorkers int
}

// DefaultConfig returns the production chunking envelope.
func DefaultConfig() *Config {
	return &Config{
		ChunkSize:      1000,
		OverlapSize:    200,
		MinChunkSize:   100,
		MaxChunkSize:   2000,
		EmbedBatchSize: 32,
		EmbedWorkers:   4,
	}
}

// NewConfig loads chunking settings from the environment.
func NewConfig() *Config {
	cfg := DefaultConfig()

	setPositive := func(env string, dst *int) {
		if v := os.Getenv(env); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				*dst = n
			}
		}
	}
	setPositive("INGEST_CHUNK_SIZE", &cfg.ChunkSize)
	setPositive("INGEST_OVERLAP_SIZE", &cfg.OverlapSize)
	setPositive("INGEST_MIN_CHUNK_SIZE", &cfg.MinChunkSize)
	setPositive("INGEST_MAX_CHUNK_SIZE", &cfg.MaxChunkSize)
	setPositive("INGEST_EMBED_BATCH_SIZE", &cfg.EmbedBatchSize)
	setPositive("INGEST_EMBED_WORKERS", &cfg.EmbedWorkers)

	return cfg
}
