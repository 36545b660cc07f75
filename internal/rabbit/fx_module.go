package rabbit

import (
	"context"
	"sync"

	"go.uber.org/fx"
)

// FXModule provides the rabbit client and runs its reconnection loop
// for the application lifetime.
var FXModule = fx.Module("rabbit",
	fx.Provide(
		NewConfig,
		NewClient,
	),
	fx.Invoke(RegisterRabbitLifecycle),
)

// RegisterRabbitLifecycle starts the reconnection watcher on start and
// closes the client on stop.
func RegisterRabbitLifecycle(lc fx.Lifecycle, client *Rabbit) {
	wg := &sync.WaitGroup{}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				client.retryConnection()
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			client.gracefulShutdown()
			wg.Wait()
			return nil
		},
	})
}
