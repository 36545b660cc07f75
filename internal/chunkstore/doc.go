// Package chunkstore persists document chunks as vector points and
// answers project-scoped nearest-neighbor queries.
//
// Chunks are addressed by a canonical identifier ("doc_{id}_chunk_{i}")
// which is hashed into a deterministic UUID point ID, so reindexing a
// document overwrites its previous points instead of duplicating them.
// The full chunk (document, index, project, text, processed flag) lives
// in the point payload and is decoded back on search.
package chunkstore
