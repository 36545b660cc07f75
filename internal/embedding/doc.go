// Package embedding computes dense vector embeddings for text through an
// OpenAI-compatible inference endpoint.
//
// The package exposes a small surface:
//
//	client, err := embedding.NewClient(embedding.NewConfig())
//	vec, err := client.EmbedQuery(ctx, "Cos'è la termodinamica?")
//	vecs, err := client.Embed(ctx, chunkTexts)
//
// Transport failures and upstream 5xx responses are wrapped in
// ErrUnavailable so callers can distinguish infrastructure outages from
// request errors. The provider never retries; retry policy belongs to
// the caller.
package embedding
