package chunkstore

import (
	"context"

	"go.uber.org/fx"

	"github.com/tutuni-ai/backend/internal/logger"
)

// FXModule provides the chunk store and bootstraps its collection on start.
var FXModule = fx.Module("chunkstore",
	fx.Provide(
		NewConfig,
		NewStore,
	),
	fx.Invoke(RegisterChunkStoreLifecycle),
)

// RegisterChunkStoreLifecycle ensures the chunk collection exists before
// the application starts serving.
func RegisterChunkStoreLifecycle(lc fx.Lifecycle, s *Store, cfg *Config, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("ensuring chunk collection", nil, map[string]interface{}{
				"collection":  cfg.Collection,
				"vector_size": cfg.VectorSize,
			})
			return s.EnsureReady(ctx)
		},
	})
}
