package ingest

import (
	"context"
	"sync"

	"go.uber.org/fx"

	"github.com/tutuni-ai/backend/internal/chat"
	"github.com/tutuni-ai/backend/internal/chunkstore"
	"github.com/tutuni-ai/backend/internal/embedding"
	"github.com/tutuni-ai/backend/internal/rabbit"
)

// FXModule provides the indexing pipeline and runs the event consumer
// for the application lifetime.
var FXModule = fx.Module("ingest",
	fx.Provide(
		NewConfig,
		NewChunker,
		func(c *embedding.Client) Embedder { return c },
		func(s *chunkstore.Store) ChunkWriter { return s },
		func(s *chat.Store) StatusStore { return s },
		func(r *rabbit.Rabbit) MessageSource { return r },
		NewIndexer,
		NewConsumer,
	),
	fx.Invoke(RegisterIngestLifecycle),
)

// RegisterIngestLifecycle starts the consumer loop on start and drains
// it on stop.
func RegisterIngestLifecycle(lc fx.Lifecycle, consumer *Consumer) {
	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				consumer.Run(ctx, wg)
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			wg.Wait()
			return nil
		},
	})
}
