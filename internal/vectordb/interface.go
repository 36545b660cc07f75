package vectordb

import "context"

// Service is the database-agnostic contract for a vector store.
// Implementations translate the generic filter model into the native
// query language of the backing database.
type Service interface {
	// Search runs a similarity search and returns up to req.TopK results
	// ordered by descending score.
	Search(ctx context.Context, req SearchRequest) ([]SearchResult, error)

	// Insert upserts the given points into a collection.
	Insert(ctx context.Context, collection string, inputs []EmbeddingInput) error

	// Delete removes points by ID.
	Delete(ctx context.Context, collection string, ids []string) error

	// DeleteByFilter removes every point matching the filter.
	DeleteByFilter(ctx context.Context, collection string, filters *FilterSet) error

	// EnsureCollection creates the collection if it does not exist.
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error

	// GetCollection returns metadata about a collection.
	GetCollection(ctx context.Context, collection string) (*Collection, error)

	// HealthCheck verifies the database is reachable.
	HealthCheck(ctx context.Context) error
}
