package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event is one completed chat turn, emitted for billing and analytics.
type Event struct {
	UserID           int64     `json:"user_id"`
	ProjectID        int64     `json:"project_id"`
	Model            string    `json:"model"`
	TokensUsed       int       `json:"tokens_used"`
	RetrievedChunks  int       `json:"retrieved_chunks"`
	ProcessingTimeMS int64     `json:"processing_time_ms"`
	ConfidenceScore  float64   `json:"confidence_score"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// Publisher emits usage events to a Kafka topic. Events are keyed by
// user so a consumer sees each user's turns in order.
type Publisher struct {
	writer *kafka.Writer
	cfg    *Config
}

// NewPublisher builds the Kafka writer. The writer dials lazily, so
// construction succeeds even while the brokers are still coming up.
func NewPublisher(cfg *Config) (*Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Publisher{writer: writer, cfg: cfg}, nil
}

// Publish emits one event. Callers treat failures as non-fatal: a lost
// usage record must never fail the chat turn that produced it.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("usage: encode event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.UserID, 10)),
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("usage: write event: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
