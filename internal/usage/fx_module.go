package usage

import (
	"context"

	"go.uber.org/fx"

	"github.com/tutuni-ai/backend/internal/logger"
)

// FXModule provides the usage event publisher.
var FXModule = fx.Module("usage",
	fx.Provide(
		NewConfig,
		NewPublisher,
	),
	fx.Invoke(RegisterUsageLifecycle),
)

// RegisterUsageLifecycle flushes and closes the Kafka writer on stop.
func RegisterUsageLifecycle(lc fx.Lifecycle, p *Publisher, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing usage publisher", nil, nil)
			return p.Close()
		},
	})
}
