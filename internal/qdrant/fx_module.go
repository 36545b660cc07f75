package qdrant

import (
	"context"

	"go.uber.org/fx"

	"github.com/tutuni-ai/backend/internal/logger"
	"github.com/tutuni-ai/backend/internal/vectordb"
)

// FXModule provides the Qdrant adapter as the vectordb.Service
// implementation for the application.
var FXModule = fx.Module("qdrant",
	fx.Provide(
		NewConfig,
		NewAdapter,
		func(a *Adapter) vectordb.Service { return a },
	),
	fx.Invoke(RegisterQdrantLifecycle),
)

// RegisterQdrantLifecycle closes the adapter on application stop.
func RegisterQdrantLifecycle(lc fx.Lifecycle, a *Adapter, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing qdrant client", nil, nil)
			return a.Close()
		},
	})
}
