// Package ingest turns extracted document text into searchable vectors.
//
// The consumer reads document.extracted events from RabbitMQ and feeds
// the indexer, which chunks the text with a sliding window, embeds the
// chunks in bounded-parallel batches and writes them to the chunk
// store. Reprocessing a document first removes its previous chunks, so
// the vector store never holds two generations of the same document.
package ingest
