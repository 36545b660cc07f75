package ingest

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutuni-ai/backend/internal/logger"
	"github.com/tutuni-ai/backend/internal/rabbit"
)

type fakeMessage struct {
	body    []byte
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeMessage) AckMsg() error { f.acked = true; return nil }

func (f *fakeMessage) NackMsg(requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeMessage) Body() []byte { return f.body }

type fakeSource struct {
	messages []rabbit.Message
}

func (f *fakeSource) Consume(_ context.Context, wg *sync.WaitGroup) <-chan rabbit.Message {
	out := make(chan rabbit.Message, len(f.messages))
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(out)
		for _, msg := range f.messages {
			out <- msg
		}
	}()
	return out
}

func runConsumer(t *testing.T, messages ...rabbit.Message) {
	t.Helper()
	embedder := &fakeEmbedder{}
	writer := &fakeChunkWriter{}
	indexer := newTestIndexer(embedder, writer, &fakeStatusStore{})
	consumer := NewConsumer(&fakeSource{messages: messages}, indexer, logger.NewNop())

	wg := &sync.WaitGroup{}
	consumer.Run(context.Background(), wg)
	wg.Wait()
}

func TestConsumerAcksProcessedDocument(t *testing.T) {
	payload, err := json.Marshal(ExtractedDocument{
		DocumentID: 7, ProjectID: 2, Filename: "tesi.pdf", Text: longText(30),
	})
	require.NoError(t, err)
	msg := &fakeMessage{body: payload}

	runConsumer(t, msg)
	assert.True(t, msg.acked)
	assert.False(t, msg.nacked)
}

func TestConsumerDeadLettersPoisonPayload(t *testing.T) {
	msg := &fakeMessage{body: []byte("not json at all")}

	runConsumer(t, msg)
	assert.False(t, msg.acked)
	assert.True(t, msg.nacked)
	assert.False(t, msg.requeue, "poison messages must dead letter, not loop")
}

func TestConsumerDeadLettersMissingIdentifiers(t *testing.T) {
	payload, err := json.Marshal(ExtractedDocument{Text: longText(30)})
	require.NoError(t, err)
	msg := &fakeMessage{body: payload}

	runConsumer(t, msg)
	assert.True(t, msg.nacked)
	assert.False(t, msg.requeue)
}

func TestConsumerDeadLettersFailedIndexing(t *testing.T) {
	// Empty text chunks to nothing, so indexing fails.
	payload, err := json.Marshal(ExtractedDocument{DocumentID: 8, ProjectID: 2, Text: " "})
	require.NoError(t, err)
	msg := &fakeMessage{body: payload}

	runConsumer(t, msg)
	assert.False(t, msg.acked)
	assert.True(t, msg.nacked)
	assert.False(t, msg.requeue)
}
