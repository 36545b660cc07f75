package main

import (
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/tutuni-ai/backend/internal/chat"
	"github.com/tutuni-ai/backend/internal/chunkstore"
	"github.com/tutuni-ai/backend/internal/completion"
	"github.com/tutuni-ai/backend/internal/embedding"
	"github.com/tutuni-ai/backend/internal/ingest"
	"github.com/tutuni-ai/backend/internal/logger"
	"github.com/tutuni-ai/backend/internal/metrics"
	"github.com/tutuni-ai/backend/internal/postgres"
	"github.com/tutuni-ai/backend/internal/prompt"
	"github.com/tutuni-ai/backend/internal/qdrant"
	"github.com/tutuni-ai/backend/internal/quota"
	"github.com/tutuni-ai/backend/internal/rabbit"
	"github.com/tutuni-ai/backend/internal/retriever"
	"github.com/tutuni-ai/backend/internal/server"
	"github.com/tutuni-ai/backend/internal/tracer"
	"github.com/tutuni-ai/backend/internal/usage"
)

func main() {
	// Local development reads .env; in deployment the variables come
	// from the environment directly.
	_ = godotenv.Load()

	fx.New(
		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		postgres.FXModule,
		qdrant.FXModule,
		chunkstore.FXModule,
		embedding.FXModule,
		completion.FXModule,
		retriever.FXModule,
		prompt.FXModule,
		quota.FXModule,
		usage.FXModule,
		rabbit.FXModule,
		ingest.FXModule,
		chat.FXModule,
		server.FXModule,
	).Run()
}
