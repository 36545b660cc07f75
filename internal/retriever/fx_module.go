package retriever

import (
	"go.uber.org/fx"

	"github.com/tutuni-ai/backend/internal/chunkstore"
	"github.com/tutuni-ai/backend/internal/embedding"
)

// FXModule provides the Retriever on top of the embedding client and the
// chunk store.
var FXModule = fx.Module("retriever",
	fx.Provide(
		func(client *embedding.Client, store *chunkstore.Store) *Retriever {
			return New(client, store)
		},
	),
)
