// Package prompt assembles completion prompts from a question, the
// retrieved document chunks and the recent conversation history.
//
// Assembly is deterministic and pure. Chunks are packed whole, in
// retrieval order, under a character budget; the result carries a
// manifest of exactly the document IDs that made it into the prompt so
// the caller can store an accurate citation.
package prompt
