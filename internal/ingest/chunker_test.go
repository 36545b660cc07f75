package ingest

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChunker() *Chunker {
	return NewChunker(DefaultConfig())
}

func sentence(i int) string {
	return fmt.Sprintf("Questa è la frase numero %d di un paragrafo accademico piuttosto lungo che parla di metodologia. ", i)
}

func TestChunkEmptyText(t *testing.T) {
	c := testChunker()
	assert.Nil(t, c.Chunk(""))
	assert.Nil(t, c.Chunk("   \n\n  \t"))
	// Below the minimum chunk size, nothing survives validation.
	assert.Nil(t, c.Chunk("troppo corto per essere un chunk"))
}

func TestChunkShortParagraphStaysWhole(t *testing.T) {
	c := testChunker()
	para := strings.TrimSpace(sentence(1) + sentence(2))

	chunks := c.Chunk(para)
	require.Len(t, chunks, 1)
	assert.Equal(t, para, chunks[0])
}

func TestChunkLongParagraphSplitsOnSentences(t *testing.T) {
	c := testChunker()
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString(sentence(i))
	}

	chunks := c.Chunk(b.String())
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), c.cfg.MaxChunkSize)
		assert.GreaterOrEqual(t, len(chunk), c.cfg.MinChunkSize)
	}
	// No sentence is cut in half: every chunk ends at a boundary.
	assert.Contains(t, chunks[0], "frase numero 0")
	last := chunks[len(chunks)-1]
	assert.Contains(t, last, "frase numero 39")
}

func TestChunkOverlapCarriesPreviousTail(t *testing.T) {
	c := testChunker()
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString(sentence(i))
	}

	chunks := c.Chunk(b.String())
	require.Greater(t, len(chunks), 1)

	// The second chunk starts with material from the first chunk's tail.
	firstTail := chunks[0][len(chunks[0])-c.cfg.OverlapSize:]
	overlapStart := strings.Fields(chunks[1])[0]
	assert.Contains(t, firstTail, overlapStart)
}

func TestChunkParagraphBoundariesRespected(t *testing.T) {
	c := testChunker()
	paraA := strings.TrimSpace(sentence(1) + sentence(2))
	paraB := strings.TrimSpace(sentence(3) + sentence(4))

	chunks := c.Chunk(paraA + "\n\n" + paraB)
	require.Len(t, chunks, 2)
	assert.Equal(t, paraA, chunks[0])
	// The second paragraph gets the overlap prefix from the first.
	assert.True(t, strings.HasSuffix(chunks[1], paraB))
}

func TestChunkDropsPageNumbers(t *testing.T) {
	c := testChunker()
	text := strings.TrimSpace(sentence(1)+sentence(2)) + "\n\n42\n\n" + strings.TrimSpace(sentence(3)+sentence(4))

	chunks := c.Chunk(text)
	for _, chunk := range chunks {
		assert.NotEqual(t, "42", strings.TrimSpace(chunk))
	}
	require.Len(t, chunks, 2)
}

func TestChunkTruncatesOversized(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxChunkSize = 400
	c := NewChunker(cfg)

	// One unbroken "sentence" longer than the max cannot be split and
	// must be truncated.
	text := strings.Repeat("parola ", 200)
	chunks := c.Chunk(text)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 400)
	}
}

func TestChunkTruncatesOnRuneBoundary(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinChunkSize = 10
	cfg.MaxChunkSize = 101
	c := NewChunker(cfg)

	// Accented text: every "è" is two bytes, so a byte-indexed cut at 101
	// would land mid-rune.
	chunks := c.Chunk(strings.Repeat("è", 200) + ".")
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 101)
		assert.True(t, utf8.ValidString(chunk))
	}
}

func TestChunkOverlapKeepsValidUTF8(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ChunkSize = 120
	cfg.OverlapSize = 31
	cfg.MinChunkSize = 10
	c := NewChunker(cfg)

	// Two long accented sentences force a split plus an overlap whose
	// byte offset falls inside a rune.
	text := "Perché è così èèèèèèèèèèèèèèèèèèèèèèèèèèèèèèèèèèèèèèèèèèèè importante. " +
		"La seconda frase continua con altre èèèèèèèèèèèèèèèèèèèè parole accentate qui."
	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk))
	}
}

func TestChunkDeterministic(t *testing.T) {
	c := testChunker()
	var b strings.Builder
	for i := 0; i < 25; i++ {
		b.WriteString(sentence(i))
	}
	text := b.String()

	first := c.Chunk(text)
	second := c.Chunk(text)
	assert.Equal(t, first, second)
}
