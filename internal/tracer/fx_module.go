package tracer

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides the tracer and flushes it on shutdown.
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewConfig,
		NewClient,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle flushes pending spans on stop.
func RegisterTracerLifecycle(lc fx.Lifecycle, t *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			t.log.Info("shutting down tracer", nil)
			return t.Shutdown(ctx)
		},
	})
}
