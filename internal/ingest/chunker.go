package ingest

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Chunker splits extracted document text into retrieval-sized pieces.
// Paragraphs are kept whole when they fit; long paragraphs are packed
// sentence by sentence, and consecutive chunks share an overlap so a
// thought split across a boundary is still retrievable.
type Chunker struct {
	cfg *Config
}

// NewChunker builds a chunker with the configured size envelope.
func NewChunker(cfg *Config) *Chunker {
	return &Chunker{cfg: cfg}
}

var (
	pageNumberRe = regexp.MustCompile(`(?m)^\s*\d+\s*$`)
	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
	blankLineRe  = regexp.MustCompile(`\n\s*\n`)
	ellipsisRe   = regexp.MustCompile(`\.{3,}`)
	sentenceRe   = regexp.MustCompile(`[.!?]+\s+`)
)

// Chunk splits text into cleaned chunks in document order. Returns nil
// for text with no usable content.
func (c *Chunker) Chunk(text string) []string {
	text = c.preprocess(text)
	if text == "" {
		return nil
	}

	var chunks []string
	for _, paragraph := range c.splitParagraphs(text) {
		if len(paragraph) <= c.cfg.ChunkSize {
			chunks = append(chunks, paragraph)
			continue
		}
		chunks = append(chunks, c.packSentences(paragraph)...)
	}

	chunks = c.applyOverlap(chunks)
	return c.validate(chunks)
}

// preprocess strips page-number lines and normalizes whitespace without
// destroying paragraph boundaries.
func (c *Chunker) preprocess(text string) string {
	text = pageNumberRe.ReplaceAllString(text, "")
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = blankLineRe.ReplaceAllString(text, "\n\n")
	text = ellipsisRe.ReplaceAllString(text, "...")
	return strings.TrimSpace(text)
}

func (c *Chunker) splitParagraphs(text string) []string {
	var out []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(strings.ReplaceAll(para, "\n", " "))
		// Very short fragments are headers or artifacts, not content.
		if len(para) > 20 {
			out = append(out, para)
		}
	}
	return out
}

// packSentences splits an oversized paragraph on sentence boundaries
// and greedily packs sentences up to the chunk size.
func (c *Chunker) packSentences(paragraph string) []string {
	sentences := splitSentences(paragraph)
	if len(sentences) == 0 {
		return []string{paragraph}
	}

	var chunks []string
	var current strings.Builder
	for _, sentence := range sentences {
		if current.Len() > 0 && current.Len()+len(sentence)+1 > c.cfg.ChunkSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func splitSentences(text string) []string {
	var out []string
	rest := text
	for {
		loc := sentenceRe.FindStringIndex(rest)
		if loc == nil {
			break
		}
		sentence := strings.TrimSpace(rest[:loc[1]])
		if len(sentence) > 10 {
			out = append(out, sentence)
		}
		rest = rest[loc[1]:]
	}
	if tail := strings.TrimSpace(rest); len(tail) > 10 {
		out = append(out, tail)
	}
	return out
}

// applyOverlap prefixes every chunk after the first with the tail of
// its predecessor, preferring to start the overlap at a sentence
// boundary.
func (c *Chunker) applyOverlap(chunks []string) []string {
	if len(chunks) <= 1 || c.cfg.OverlapSize <= 0 {
		return chunks
	}

	out := make([]string, len(chunks))
	out[0] = chunks[0]
	for i := 1; i < len(chunks); i++ {
		overlap := overlapTail(chunks[i-1], c.cfg.OverlapSize)
		if overlap != "" {
			out[i] = overlap + " " + chunks[i]
		} else {
			out[i] = chunks[i]
		}
	}
	return out
}

func overlapTail(text string, size int) string {
	if len(text) <= size {
		return text
	}
	// Never start the slice inside a multibyte rune.
	start := len(text) - size
	for start < len(text) && !utf8.RuneStart(text[start]) {
		start++
	}
	tail := text[start:]
	if loc := sentenceRe.FindStringIndex(tail); loc != nil {
		return tail[loc[1]:]
	}
	return tail
}

// validate drops undersized chunks and truncates oversized ones.
func (c *Chunker) validate(chunks []string) []string {
	var out []string
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if len(chunk) < c.cfg.MinChunkSize {
			continue
		}
		if len(chunk) > c.cfg.MaxChunkSize {
			chunk = truncateToRuneBoundary(chunk, c.cfg.MaxChunkSize)
		}
		out = append(out, chunk)
	}
	return out
}

// truncateToRuneBoundary cuts s to at most max bytes, backing off so the
// cut never lands inside a multibyte rune.
func truncateToRuneBoundary(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
