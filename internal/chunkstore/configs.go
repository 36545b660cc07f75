package chunkstore

import (
	"os"
	"strconv"
)

// Config holds the collection settings for the chunk store.
type Config struct {
	// Collection is the vector collection chunks live in.
	Collection string `yaml:"collection" env:"CHUNKSTORE_COLLECTION"`

	// VectorSize is the embedding dimension the collection is created with.
	// Inserts and searches with a different dimension are rejected upstream.
	VectorSize int `yaml:"vector_size" env:"EMBEDDING_DIMENSION"`
}

// DefaultConfig returns the default collection settings.
func DefaultConfig() *Config {
	return &Config{
		Collection: "document_chunks",
		VectorSize: 1536,
	}
}

// NewConfig builds a Config from environment variables, falling back to
// the defaults where a variable is unset.
func NewConfig() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("CHUNKSTORE_COLLECTION"); v != "" {
		cfg.Collection = v
	}
	if v := os.Getenv("EMBEDDING_DIMENSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.VectorSize = n
		}
	}

	return cfg
}
