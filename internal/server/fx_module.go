package server

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"

	"github.com/tutuni-ai/backend/internal/chat"
	"github.com/tutuni-ai/backend/internal/logger"
)

// FXModule provides the HTTP server and binds it to the application
// lifecycle.
var FXModule = fx.Module("server",
	fx.Provide(
		NewConfig,
		func(m *chat.Manager) ChatAPI { return m },
		NewServer,
	),
	fx.Invoke(RegisterServerLifecycle),
)

// RegisterServerLifecycle starts the listener on start and drains it on
// stop.
func RegisterServerLifecycle(lc fx.Lifecycle, s *Server, log *logger.Logger) {
	httpServer := &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", nil, map[string]interface{}{
				"addr": httpServer.Addr,
			})
			go func() {
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped unexpectedly", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	})
}
