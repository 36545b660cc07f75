package chunkstore

import (
	"fmt"

	"github.com/google/uuid"
)

// chunkNamespace is the UUIDv5 namespace for deriving point IDs from
// chunk identifiers. Qdrant only accepts integer or UUID point IDs, so
// the human-readable chunk ID is hashed into a stable UUID and kept in
// the payload for round trips.
var chunkNamespace = uuid.MustParse("8f2a4b1e-6c3d-4e5f-9a7b-2d1c0e9f8a6b")

// DocumentChunk is one indexed fragment of a document. Chunks are
// immutable: reprocessing a document deletes its old chunks and inserts
// new ones.
type DocumentChunk struct {
	// DocumentID is the owning document.
	DocumentID int64

	// ChunkIndex is the 0-based position of the chunk within the document.
	ChunkIndex int

	// ProjectID scopes the chunk to a project.
	ProjectID int64

	// Text is the chunk content, at most 2000 characters.
	Text string

	// Embedding is the dense vector for the chunk text.
	Embedding []float32

	// Processed marks the chunk as belonging to a fully processed
	// document. Retrieval only ever sees processed chunks.
	Processed bool
}

// ID returns the canonical chunk identifier, e.g. "doc_12_chunk_3".
func (c DocumentChunk) ID() string {
	return ChunkID(c.DocumentID, c.ChunkIndex)
}

// PointID returns the deterministic UUID under which the chunk is stored.
func (c DocumentChunk) PointID() string {
	return PointID(c.DocumentID, c.ChunkIndex)
}

// ChunkID formats the canonical chunk identifier.
func ChunkID(documentID int64, chunkIndex int) string {
	return fmt.Sprintf("doc_%d_chunk_%d", documentID, chunkIndex)
}

// PointID derives the stable UUIDv5 point ID for a chunk.
func PointID(documentID int64, chunkIndex int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(ChunkID(documentID, chunkIndex))).String()
}

// ScoredChunk pairs a chunk with its similarity score from a search.
type ScoredChunk struct {
	Chunk DocumentChunk
	Score float32
}
