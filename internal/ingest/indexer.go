package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tutuni-ai/backend/internal/chat"
	"github.com/tutuni-ai/backend/internal/chunkstore"
	"github.com/tutuni-ai/backend/internal/logger"
)

// Embedder turns chunk texts into vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkWriter is the vector store slice the indexer writes through.
type ChunkWriter interface {
	Insert(ctx context.Context, chunks []chunkstore.DocumentChunk) error
	DeleteDocument(ctx context.Context, documentID int64) error
}

// StatusStore tracks documents through the processing states.
type StatusStore interface {
	SetDocumentStatus(ctx context.Context, documentID int64, status string) error
}

// ExtractedDocument is the payload of a document.extracted event: the
// text of one uploaded document, ready for chunking.
type ExtractedDocument struct {
	DocumentID int64  `json:"document_id"`
	ProjectID  int64  `json:"project_id"`
	Filename   string `json:"filename"`
	Text       string `json:"text"`
}

// Indexer chunks extracted text, embeds it and writes the chunks to
// the vector store.
type Indexer struct {
	cfg      *Config
	chunker  *Chunker
	embedder Embedder
	chunks   ChunkWriter
	status   StatusStore
	log      *logger.Logger
}

// NewIndexer wires the indexing pipeline.
func NewIndexer(cfg *Config, chunker *Chunker, embedder Embedder, chunks ChunkWriter, status StatusStore, log *logger.Logger) *Indexer {
	return &Indexer{
		cfg:      cfg,
		chunker:  chunker,
		embedder: embedder,
		chunks:   chunks,
		status:   status,
		log:      log,
	}
}

// Index processes one extracted document end to end. Existing chunks
// of the document are removed first so reprocessing never leaves stale
// vectors behind. The document status records the outcome.
func (ix *Indexer) Index(ctx context.Context, doc ExtractedDocument) error {
	start := time.Now()

	if err := ix.status.SetDocumentStatus(ctx, doc.DocumentID, chat.DocumentStatusProcessing); err != nil {
		return fmt.Errorf("ingest: mark document processing: %w", err)
	}

	if err := ix.index(ctx, doc); err != nil {
		if statusErr := ix.status.SetDocumentStatus(ctx, doc.DocumentID, chat.DocumentStatusError); statusErr != nil {
			ix.log.Error("failed to mark document errored", statusErr, map[string]interface{}{
				"document_id": doc.DocumentID,
			})
		}
		return err
	}

	if err := ix.status.SetDocumentStatus(ctx, doc.DocumentID, chat.DocumentStatusProcessed); err != nil {
		return fmt.Errorf("ingest: mark document processed: %w", err)
	}

	ix.log.Info("document indexed", nil, map[string]interface{}{
		"document_id": doc.DocumentID,
		"project_id":  doc.ProjectID,
		"filename":    doc.Filename,
		"elapsed_ms":  time.Since(start).Milliseconds(),
	})
	return nil
}

func (ix *Indexer) index(ctx context.Context, doc ExtractedDocument) error {
	texts := ix.chunker.Chunk(doc.Text)
	if len(texts) == 0 {
		return fmt.Errorf("ingest: document %d produced no usable chunks", doc.DocumentID)
	}

	if err := ix.chunks.DeleteDocument(ctx, doc.DocumentID); err != nil {
		return fmt.Errorf("ingest: clear previous chunks of document %d: %w", doc.DocumentID, err)
	}

	vectors, err := ix.embedAll(ctx, texts)
	if err != nil {
		return fmt.Errorf("ingest: embed document %d: %w", doc.DocumentID, err)
	}

	chunks := make([]chunkstore.DocumentChunk, len(texts))
	for i, text := range texts {
		chunks[i] = chunkstore.DocumentChunk{
			DocumentID: doc.DocumentID,
			ChunkIndex: i,
			ProjectID:  doc.ProjectID,
			Text:       text,
			Embedding:  vectors[i],
			Processed:  true,
		}
	}

	if err := ix.chunks.Insert(ctx, chunks); err != nil {
		return fmt.Errorf("ingest: store chunks of document %d: %w", doc.DocumentID, err)
	}
	return nil
}

// embedAll embeds texts in batches with bounded parallelism, keeping
// vector order aligned with the input.
func (ix *Indexer) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	batchSize := ix.cfg.EmbedBatchSize
	if batchSize <= 0 {
		batchSize = 32
	}

	vectors := make([][]float32, len(texts))
	var mu sync.Mutex

	workers := ix.cfg.EmbedWorkers
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for offset := 0; offset < len(texts); offset += batchSize {
		begin := offset
		end := begin + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		g.Go(func() error {
			batch, err := ix.embedder.Embed(gctx, texts[begin:end])
			if err != nil {
				return err
			}
			if len(batch) != end-begin {
				return fmt.Errorf("embedding count mismatch: got %d for %d texts", len(batch), end-begin)
			}
			mu.Lock()
			copy(vectors[begin:end], batch)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
