// Package vectordb defines the database-agnostic vector store contract
// used by the chunk store. Concrete backends (qdrant) implement the
// Service interface and translate the generic FilterSet model into
// their native filter representation, so callers never depend on a
// specific vector database client.
package vectordb
