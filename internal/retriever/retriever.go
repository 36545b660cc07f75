package retriever

import (
	"context"
	"fmt"
	"sort"

	"github.com/tutuni-ai/backend/internal/chunkstore"
)

// Embedder is the slice of the embedding client the retriever needs.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// ChunkSearcher is the slice of the chunk store the retriever needs.
type ChunkSearcher interface {
	QueryNearest(ctx context.Context, projectID int64, vector []float32, k int) ([]chunkstore.ScoredChunk, error)
	VectorSize() int
}

// Retriever turns a question into the most relevant project chunks.
// It is read-only: no retrieval path ever mutates the store.
type Retriever struct {
	embedder Embedder
	store    ChunkSearcher
}

// New builds a Retriever.
func New(embedder Embedder, store ChunkSearcher) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Retrieve embeds the question and returns up to k chunks of the project
// ordered by descending score. Ties are broken by (document_id,
// chunk_index) ascending so results are stable. A minScore above zero
// filters low-similarity chunks; zero means no floor, so
// negative-cosine results still come back when nothing better exists.
// A project with no eligible chunks yields an empty slice, not an error.
func (r *Retriever) Retrieve(ctx context.Context, projectID int64, question string, k int, minScore float32) ([]chunkstore.ScoredChunk, error) {
	if question == "" {
		return nil, fmt.Errorf("retriever: question cannot be empty")
	}
	if k <= 0 {
		return nil, fmt.Errorf("retriever: k must be greater than 0")
	}

	vector, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("retriever: embed question: %w", err)
	}

	// A question embedding of the wrong dimension is rejected outright.
	// Truncating or padding would silently corrupt similarity scores.
	if want := r.store.VectorSize(); len(vector) != want {
		return nil, fmt.Errorf("retriever: embedding dimension %d does not match index dimension %d", len(vector), want)
	}

	scored, err := r.store.QueryNearest(ctx, projectID, vector, k)
	if err != nil {
		return nil, fmt.Errorf("retriever: %w", err)
	}

	eligible := make([]chunkstore.ScoredChunk, 0, len(scored))
	for _, s := range scored {
		if minScore > 0 && s.Score < minScore {
			continue
		}
		eligible = append(eligible, s)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].Score != eligible[j].Score {
			return eligible[i].Score > eligible[j].Score
		}
		if eligible[i].Chunk.DocumentID != eligible[j].Chunk.DocumentID {
			return eligible[i].Chunk.DocumentID < eligible[j].Chunk.DocumentID
		}
		return eligible[i].Chunk.ChunkIndex < eligible[j].Chunk.ChunkIndex
	})

	return eligible, nil
}
