package chat

import (
	"context"

	"go.uber.org/fx"

	"github.com/tutuni-ai/backend/internal/logger"
	"github.com/tutuni-ai/backend/internal/prompt"
	"github.com/tutuni-ai/backend/internal/retriever"
	"github.com/tutuni-ai/backend/internal/usage"
)

// FXModule provides the chat store and manager and migrates the chat
// tables on start.
var FXModule = fx.Module("chat",
	fx.Provide(
		NewConfig,
		NewStore,
		func(s *Store) Storage { return s },
		func(r *retriever.Retriever) Retriever { return r },
		func(a *prompt.Assembler) Assembler { return a },
		func(p *usage.Publisher) UsagePublisher { return p },
		NewManager,
	),
	fx.Invoke(RegisterChatLifecycle),
)

// RegisterChatLifecycle runs schema migration before the application
// starts serving.
func RegisterChatLifecycle(lc fx.Lifecycle, s *Store, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("migrating chat schema", nil)
			return s.Migrate()
		},
	})
}
