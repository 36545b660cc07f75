// Package retriever embeds a user question and finds the most similar
// processed chunks within a project. It enforces the embedding dimension
// contract, applies the similarity floor, and guarantees a stable result
// order (score descending, then document and chunk position).
package retriever
