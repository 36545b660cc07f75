package chunkstore

import (
	"context"
	"fmt"

	"github.com/tutuni-ai/backend/internal/vectordb"
)

// payload field names. Retrieval filters depend on these staying stable.
const (
	fieldChunkID    = "chunk_id"
	fieldDocumentID = "document_id"
	fieldChunkIndex = "chunk_index"
	fieldProjectID  = "project_id"
	fieldText       = "text"
	fieldProcessed  = "processed"
)

// Store persists document chunks in a vector collection and answers
// nearest-neighbor queries scoped to a project.
type Store struct {
	db  vectordb.Service
	cfg *Config
}

// NewStore builds a Store on top of a vector database service.
func NewStore(db vectordb.Service, cfg *Config) *Store {
	return &Store{db: db, cfg: cfg}
}

// EnsureReady creates the chunk collection if it does not exist. Called
// once at startup.
func (s *Store) EnsureReady(ctx context.Context) error {
	return s.db.EnsureCollection(ctx, s.cfg.Collection, s.cfg.VectorSize)
}

// VectorSize returns the embedding dimension the store was configured with.
func (s *Store) VectorSize() int {
	return s.cfg.VectorSize
}

// Insert upserts chunks into the collection. Every chunk must carry an
// embedding of the configured dimension.
func (s *Store) Insert(ctx context.Context, chunks []DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	inputs := make([]vectordb.EmbeddingInput, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) != s.cfg.VectorSize {
			return fmt.Errorf("chunk %s: embedding dimension %d does not match collection dimension %d",
				c.ID(), len(c.Embedding), s.cfg.VectorSize)
		}
		inputs = append(inputs, vectordb.EmbeddingInput{
			ID:      c.PointID(),
			Vector:  c.Embedding,
			Payload: encodePayload(c),
		})
	}

	if err := s.db.Insert(ctx, s.cfg.Collection, inputs); err != nil {
		return fmt.Errorf("chunkstore insert: %w", err)
	}
	return nil
}

// DeleteDocument removes every chunk belonging to a document. Used when
// a document is deleted or reprocessed.
func (s *Store) DeleteDocument(ctx context.Context, documentID int64) error {
	filters := vectordb.NewFilterSet().
		AddMust(vectordb.MatchField(fieldDocumentID, documentID))

	if err := s.db.DeleteByFilter(ctx, s.cfg.Collection, filters); err != nil {
		return fmt.Errorf("chunkstore delete document %d: %w", documentID, err)
	}
	return nil
}

// QueryNearest returns up to k chunks of the given project ordered by
// descending similarity to the query vector. Only chunks of processed
// documents are eligible. An empty result is not an error.
func (s *Store) QueryNearest(ctx context.Context, projectID int64, vector []float32, k int) ([]ScoredChunk, error) {
	if len(vector) != s.cfg.VectorSize {
		return nil, fmt.Errorf("query dimension %d does not match collection dimension %d",
			len(vector), s.cfg.VectorSize)
	}

	filters := vectordb.NewFilterSet().
		AddMust(vectordb.MatchField(fieldProjectID, projectID)).
		AddMust(vectordb.MatchField(fieldProcessed, true))

	results, err := s.db.Search(ctx, vectordb.SearchRequest{
		CollectionName: s.cfg.Collection,
		Vector:         vector,
		TopK:           k,
		Filters:        filters,
	})
	if err != nil {
		return nil, fmt.Errorf("chunkstore search: %w", err)
	}

	scored := make([]ScoredChunk, 0, len(results))
	for _, r := range results {
		chunk, err := decodePayload(r.Payload)
		if err != nil {
			return nil, fmt.Errorf("chunkstore search: point %s: %w", r.ID, err)
		}
		scored = append(scored, ScoredChunk{Chunk: chunk, Score: r.Score})
	}

	return scored, nil
}

// HealthCheck verifies the backing vector database is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

func encodePayload(c DocumentChunk) map[string]any {
	return map[string]any{
		fieldChunkID:    c.ID(),
		fieldDocumentID: c.DocumentID,
		fieldChunkIndex: int64(c.ChunkIndex),
		fieldProjectID:  c.ProjectID,
		fieldText:       c.Text,
		fieldProcessed:  c.Processed,
	}
}

func decodePayload(payload map[string]any) (DocumentChunk, error) {
	docID, ok := asInt64(payload[fieldDocumentID])
	if !ok {
		return DocumentChunk{}, fmt.Errorf("payload missing %s", fieldDocumentID)
	}
	idx, ok := asInt64(payload[fieldChunkIndex])
	if !ok {
		return DocumentChunk{}, fmt.Errorf("payload missing %s", fieldChunkIndex)
	}
	projectID, ok := asInt64(payload[fieldProjectID])
	if !ok {
		return DocumentChunk{}, fmt.Errorf("payload missing %s", fieldProjectID)
	}
	text, ok := payload[fieldText].(string)
	if !ok {
		return DocumentChunk{}, fmt.Errorf("payload missing %s", fieldText)
	}
	processed, _ := payload[fieldProcessed].(bool)

	return DocumentChunk{
		DocumentID: docID,
		ChunkIndex: int(idx),
		ProjectID:  projectID,
		Text:       text,
		Processed:  processed,
	}, nil
}

// asInt64 tolerates the numeric types different payload decoders produce.
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
