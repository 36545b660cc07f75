package ingest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/tutuni-ai/backend/internal/logger"
	"github.com/tutuni-ai/backend/internal/rabbit"
)

// MessageSource streams broker deliveries. Implemented by *rabbit.Rabbit.
type MessageSource interface {
	Consume(ctx context.Context, wg *sync.WaitGroup) <-chan rabbit.Message
}

// Consumer drives the indexer from document.extracted events.
type Consumer struct {
	source  MessageSource
	indexer *Indexer
	log     *logger.Logger
}

// NewConsumer builds the event consumer.
func NewConsumer(source MessageSource, indexer *Indexer, log *logger.Logger) *Consumer {
	return &Consumer{source: source, indexer: indexer, log: log}
}

// Run consumes events until ctx is cancelled. Undecodable payloads and
// failed documents are rejected without requeue, which routes them to
// the dead letter queue instead of looping back.
func (c *Consumer) Run(ctx context.Context, wg *sync.WaitGroup) {
	for msg := range c.source.Consume(ctx, wg) {
		c.handle(ctx, msg)
	}
}

func (c *Consumer) handle(ctx context.Context, msg rabbit.Message) {
	var doc ExtractedDocument
	if err := json.Unmarshal(msg.Body(), &doc); err != nil {
		c.log.Error("undecodable document event", err, map[string]interface{}{
			"payload_bytes": len(msg.Body()),
		})
		c.reject(msg)
		return
	}
	if doc.DocumentID == 0 || doc.ProjectID == 0 {
		c.log.Error("document event missing identifiers", nil, map[string]interface{}{
			"document_id": doc.DocumentID,
			"project_id":  doc.ProjectID,
		})
		c.reject(msg)
		return
	}

	if err := c.indexer.Index(ctx, doc); err != nil {
		c.log.Error("document indexing failed", err, map[string]interface{}{
			"document_id": doc.DocumentID,
			"project_id":  doc.ProjectID,
		})
		c.reject(msg)
		return
	}

	if err := msg.AckMsg(); err != nil {
		c.log.Error("failed to ack document event", err, map[string]interface{}{
			"document_id": doc.DocumentID,
		})
	}
}

func (c *Consumer) reject(msg rabbit.Message) {
	if err := msg.NackMsg(false); err != nil {
		c.log.Error("failed to nack document event", err, nil)
	}
}
