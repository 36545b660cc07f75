package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt64ListRoundTrip(t *testing.T) {
	list := Int64List{10, 11, 12}

	value, err := list.Value()
	require.NoError(t, err)

	var decoded Int64List
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, list, decoded)
}

func TestInt64ListNilValue(t *testing.T) {
	var list Int64List
	value, err := list.Value()
	require.NoError(t, err)
	assert.Nil(t, value)

	var decoded Int64List
	require.NoError(t, decoded.Scan(nil))
	assert.Nil(t, decoded)
}

func TestChunkPreviewsScanFromString(t *testing.T) {
	// pgx hands jsonb over as []byte, but lib-level drivers may give a
	// string; both must decode.
	raw := `[{"document_id":3,"chunk_text":"testo","similarity_score":0.75}]`

	var fromBytes ChunkPreviews
	require.NoError(t, fromBytes.Scan([]byte(raw)))

	var fromString ChunkPreviews
	require.NoError(t, fromString.Scan(raw))

	assert.Equal(t, fromBytes, fromString)
	require.Len(t, fromBytes, 1)
	assert.Equal(t, int64(3), fromBytes[0].DocumentID)
	assert.InDelta(t, 0.75, fromBytes[0].SimilarityScore, 1e-6)
}

func TestScanRejectsUnknownType(t *testing.T) {
	var list Int64List
	assert.Error(t, list.Scan(42))
}

func TestPreviewText(t *testing.T) {
	short := "breve"
	assert.Equal(t, short, previewText(short))

	long := strings.Repeat("à", 300)
	preview := previewText(long)
	assert.Equal(t, 200, len([]rune(preview))-3)
	assert.True(t, strings.HasSuffix(preview, "..."))
}

func TestMessageTypeHelpers(t *testing.T) {
	user := &ChatMessage{MessageType: MessageTypeUser}
	ai := &ChatMessage{MessageType: MessageTypeAI}

	assert.True(t, user.IsUserMessage())
	assert.False(t, user.IsAIMessage())
	assert.True(t, ai.IsAIMessage())
	assert.False(t, ai.IsUserMessage())
}
