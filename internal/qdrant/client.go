package qdrant

import (
	"context"
	"fmt"
	"log"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
)

//
// ──────────────────────────────────────────────────────────────
//   QDRANT ADAPTER
// ──────────────────────────────────────────────────────────────
//
// This file defines a thin wrapper around the official Qdrant Go client
// that implements the vectordb.Service contract used by the chunk store.
//
// Responsibilities:
//   • Establish and validate connectivity with Qdrant.
//   • Manage collections (create if missing).
//   • Insert, delete, and search chunk embeddings.
//   • Translate the generic vectordb filter model into Qdrant filters.
//

// Adapter wraps the official Qdrant Go client and implements
// vectordb.Service on top of it.
type Adapter struct {
	api *qdrant.Client
	cfg *Config
}

const defaultBatchSize = 200 // chunk size for batch upserts

// NewAdapter constructs an Adapter and validates connectivity via a
// health check.
//
// The Qdrant Go SDK creates lightweight gRPC connections, so this method
// performs an immediate health check to fail fast if the service is
// unreachable.
func NewAdapter(cfg *Config) (*Adapter, error) {
	log.Printf("[Qdrant] Connecting to endpoint: %s:%d", cfg.Endpoint, cfg.Port)

	port := cfg.Port
	if port == 0 {
		port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   cfg.Endpoint,
		Port:                   port,
		APIKey:                 cfg.ApiKey,
		SkipCompatibilityCheck: !cfg.CheckCompatibility,
	})
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to initialize client: %w", err)
	}

	a := &Adapter{api: client, cfg: cfg}

	if err := a.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("[Qdrant] health check failed: %w", err)
	}

	log.Println("[Qdrant] Client connected successfully")
	return a, nil
}

// HealthCheck verifies the availability of the Qdrant service by calling
// its health endpoint through the SDK. It is lightweight and fast, used
// during startup and readiness probes.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	if a.api == nil {
		return fmt.Errorf("[Qdrant] client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	resp, err := a.api.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("[Qdrant] health check failed: %w", err)
	}

	log.Printf("[Qdrant] Health check passed (title=%s, version=%s, endpoint=%s)", resp.Title, resp.Version, a.cfg.Endpoint)

	return nil
}

// Client returns the underlying Qdrant SDK client.
// This is useful for direct access to low-level operations.
func (a *Adapter) Client() *qdrant.Client {
	return a.api
}

// Close gracefully shuts down the Qdrant client.
//
// The official Qdrant Go SDK doesn't maintain persistent connections, so
// this is currently a no-op. It exists for lifecycle symmetry.
func (a *Adapter) Close() error {
	log.Println("[Qdrant] closing client (no-op)")
	return nil
}
