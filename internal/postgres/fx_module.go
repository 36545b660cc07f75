package postgres

import (
	"context"
	"log"

	"go.uber.org/fx"
)

// FXModule provides the Postgres client and manages its lifecycle: the
// monitoring goroutines start with the application and the pool is closed on
// shutdown.
var FXModule = fx.Module("postgres",
	fx.Provide(
		NewConfig,
		NewPostgres,
	),
	fx.Invoke(RegisterPostgresLifecycle),
)

// RegisterPostgresLifecycle starts connection monitoring on application
// start and shuts the pool down on stop.
func RegisterPostgresLifecycle(lc fx.Lifecycle, pg *Postgres) {
	monitorCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go pg.MonitorConnection(monitorCtx)
			go pg.RetryConnection(monitorCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("INFO: Shutting down PostgreSQL client")
			cancel()
			return pg.GracefulShutdown()
		},
	})
}
