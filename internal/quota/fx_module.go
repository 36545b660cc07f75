package quota

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/tutuni-ai/backend/internal/logger"
	"github.com/tutuni-ai/backend/internal/postgres"
)

// FXModule provides the quota Service, selecting the backend by config.
// The redis backend is the default; the postgres backend rides on the
// shared database connection.
var FXModule = fx.Module("quota",
	fx.Provide(
		NewConfig,
		NewService,
	),
	fx.Invoke(RegisterQuotaLifecycle),
)

// NewService builds the configured backend.
func NewService(cfg *Config, db *postgres.Postgres, log *logger.Logger) (Service, error) {
	switch cfg.Backend {
	case BackendPostgres:
		log.Info("quota backend selected", nil, map[string]interface{}{"backend": "postgres"})
		return NewPostgresService(db, cfg), nil
	case BackendRedis:
		log.Info("quota backend selected", nil, map[string]interface{}{"backend": "redis"})
		return NewRedisService(cfg)
	default:
		return nil, fmt.Errorf("quota: unknown backend %q", cfg.Backend)
	}
}

// RegisterQuotaLifecycle closes the redis connection on stop when the
// redis backend is active.
func RegisterQuotaLifecycle(lc fx.Lifecycle, svc Service) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if closer, ok := svc.(interface{ Close() error }); ok {
				return closer.Close()
			}
			return nil
		},
	})
}
