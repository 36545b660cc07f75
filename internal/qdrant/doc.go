// Package qdrant implements the vectordb.Service contract on top of the
// official Qdrant Go client.
//
// The adapter keeps all Qdrant-specific concerns (gRPC client setup,
// protobuf payload conversion, filter translation) inside this package,
// so the chunk store and retriever only ever depend on the generic
// vectordb types.
//
//	┌─────────────────────────────────────────────────────┐
//	│                    chunkstore                       │
//	│  (uses vectordb.Service - no Qdrant imports)        │
//	└──────────────────────────┬──────────────────────────┘
//	                           │
//	                  vectordb.Service
//	                           │
//	┌──────────────────────────┴──────────────────────────┐
//	│                   qdrant.Adapter                    │
//	│  (translates filters, payloads, point IDs)          │
//	└─────────────────────────────────────────────────────┘
//
// Layout:
//
//	client.go      # connection, health check, lifecycle
//	configs.go     # Config + env loading
//	operations.go  # Service implementation
//	converter.go   # filter and payload conversion
//	utils.go       # validation and protobuf helpers
//	fx_module.go   # Fx wiring
package qdrant
