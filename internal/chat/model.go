package chat

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MessageType distinguishes who produced a chat message.
type MessageType string

const (
	MessageTypeUser   MessageType = "user"
	MessageTypeAI     MessageType = "ai"
	MessageTypeSystem MessageType = "system"
)

// Document processing states. Only PROCESSED documents are visible to
// retrieval.
const (
	DocumentStatusUploaded   = "UPLOADED"
	DocumentStatusProcessing = "PROCESSING"
	DocumentStatusProcessed  = "PROCESSED"
	DocumentStatusError      = "ERROR"
)

// ChatMessage is one entry of a project's conversation. The table is
// append-only; the only delete is the per-project history wipe.
type ChatMessage struct {
	ID          int64       `gorm:"primaryKey" json:"id"`
	ProjectID   int64       `gorm:"index;not null" json:"project_id"`
	UserID      int64       `gorm:"not null" json:"user_id"`
	MessageType MessageType `gorm:"type:varchar(10);not null" json:"message_type"`
	Content     string      `gorm:"type:text;not null" json:"content"`

	// Context and metadata, set on ai messages only.
	ContextDocuments Int64List `gorm:"type:jsonb" json:"context_documents,omitempty"`
	AIModel          *string   `gorm:"type:varchar(50)" json:"ai_model,omitempty"`
	TokensUsed       *int      `json:"tokens_used,omitempty"`
	ProcessingTimeMS *int64    `json:"processing_time_ms,omitempty"`
	ConfidenceScore  *float64  `json:"confidence_score,omitempty"`

	// RAG metadata: truncated previews of the chunks the answer saw.
	RetrievedChunks ChunkPreviews `gorm:"type:jsonb" json:"retrieved_chunks,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// TableName implements the gorm naming override.
func (ChatMessage) TableName() string { return "chat_messages" }

// IsUserMessage reports whether this entry came from the user.
func (m *ChatMessage) IsUserMessage() bool { return m.MessageType == MessageTypeUser }

// IsAIMessage reports whether this entry is a generated answer.
func (m *ChatMessage) IsAIMessage() bool { return m.MessageType == MessageTypeAI }

// User is the account row. Quota counters live here when the postgres
// quota backend is active.
type User struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Name     string `gorm:"not null" json:"name"`
	Role     string `gorm:"type:varchar(10);not null;default:free" json:"role"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`

	// Usage tracking (postgres quota backend).
	DailyMessageCount int64      `gorm:"not null;default:0" json:"daily_message_count"`
	LastMessageDate   *time.Time `gorm:"type:date" json:"last_message_date,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName implements the gorm naming override.
func (User) TableName() string { return "users" }

// Project groups documents and conversation per user.
type Project struct {
	ID      int64  `gorm:"primaryKey" json:"id"`
	OwnerID int64  `gorm:"index;not null" json:"owner_id"`
	Name    string `gorm:"not null" json:"name"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName implements the gorm naming override.
func (Project) TableName() string { return "projects" }

// Document tracks an uploaded file through extraction and indexing.
// The file body itself lives with the (external) extraction service.
type Document struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	ProjectID int64  `gorm:"index;not null" json:"project_id"`
	Filename  string `gorm:"type:varchar(255);not null" json:"filename"`
	Status    string `gorm:"type:varchar(20);not null;default:UPLOADED" json:"status"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName implements the gorm naming override.
func (Document) TableName() string { return "documents" }

// ChunkPreview is the stored trace of one retrieved chunk: enough to
// audit an answer without duplicating chunk text at full length.
type ChunkPreview struct {
	DocumentID      int64   `json:"document_id"`
	ChunkText       string  `json:"chunk_text"`
	SimilarityScore float32 `json:"similarity_score"`
}

// Int64List stores a JSON array of IDs in a jsonb column.
type Int64List []int64

// Value implements driver.Valuer.
func (l Int64List) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *Int64List) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// ChunkPreviews stores a JSON array of previews in a jsonb column.
type ChunkPreviews []ChunkPreview

// Value implements driver.Valuer.
func (c ChunkPreviews) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner.
func (c *ChunkPreviews) Scan(value interface{}) error {
	return scanJSON(value, c)
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("chat: cannot scan %T into %T", value, dest)
	}
}

// previewText truncates chunk text for storage, the way the web UI
// shows it.
func previewText(text string) string {
	const max = 200
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
