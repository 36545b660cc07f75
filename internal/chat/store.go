package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/tutuni-ai/backend/internal/postgres"
)

// Store is the relational persistence layer of the chat domain: users,
// projects, documents and the conversation log.
type Store struct {
	db *postgres.Postgres
}

// NewStore builds the store on an established database connection.
func NewStore(db *postgres.Postgres) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the chat tables.
func (s *Store) Migrate() error {
	return s.db.Migrate(&User{}, &Project{}, &Document{}, &ChatMessage{})
}

// GetActiveUser loads a user and verifies the account is usable.
func (s *Store) GetActiveUser(ctx context.Context, userID int64) (*User, error) {
	var user User
	if err := s.db.First(ctx, &user, "id = ?", userID); err != nil {
		if postgres.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return &user, nil
}

// GetOwnedProject loads a project and verifies ownership. A project
// owned by someone else is reported as not found so the API does not
// leak which project IDs exist.
func (s *Store) GetOwnedProject(ctx context.Context, projectID, userID int64) (*Project, error) {
	var project Project
	if err := s.db.First(ctx, &project, "id = ? AND owner_id = ?", projectID, userID); err != nil {
		if postgres.IsNotFound(err) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("load project %d: %w", projectID, err)
	}
	return &project, nil
}

// RecentHistory returns the last limit messages of a project in
// chronological order, oldest first.
func (s *Store) RecentHistory(ctx context.Context, projectID int64, limit int) ([]ChatMessage, error) {
	var messages []ChatMessage
	err := s.db.Query(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages)
	if err != nil {
		return nil, fmt.Errorf("load recent history: %w", err)
	}

	// Flip back to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// SaveTurn persists the user message and the answer together. Both rows
// land in one transaction, so a failed turn leaves no trace in the
// conversation log.
func (s *Store) SaveTurn(ctx context.Context, userMsg, aiMsg *ChatMessage) error {
	return s.db.Transaction(ctx, func(tx *postgres.Postgres) error {
		if err := tx.Create(ctx, userMsg); err != nil {
			return fmt.Errorf("save user message: %w", err)
		}
		if err := tx.Create(ctx, aiMsg); err != nil {
			return fmt.Errorf("save ai message: %w", err)
		}
		return nil
	})
}

// HistoryPage is one page of the conversation log.
type HistoryPage struct {
	Messages   []ChatMessage `json:"messages"`
	TotalCount int64         `json:"total_count"`
	HasMore    bool          `json:"has_more"`
}

// History returns a page of the project conversation in chronological
// order with the total count for pagination.
func (s *Store) History(ctx context.Context, projectID int64, limit, offset int) (*HistoryPage, error) {
	var total int64
	if err := s.db.Count(ctx, &ChatMessage{}, &total, "project_id = ?", projectID); err != nil {
		return nil, fmt.Errorf("count history: %w", err)
	}

	var messages []ChatMessage
	err := s.db.Query(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	return &HistoryPage{
		Messages:   messages,
		TotalCount: total,
		HasMore:    int64(offset+len(messages)) < total,
	}, nil
}

// ClearHistory deletes every message of a project and returns how many
// rows were removed.
func (s *Store) ClearHistory(ctx context.Context, projectID int64) (int64, error) {
	deleted, err := s.db.Delete(ctx, &ChatMessage{}, "project_id = ?", projectID)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return deleted, nil
}

// ProjectStats summarizes a project's conversation activity.
type ProjectStats struct {
	TotalMessages   int64      `json:"total_messages"`
	UserMessages    int64      `json:"user_messages"`
	AIMessages      int64      `json:"ai_messages"`
	TotalTokensUsed int64      `json:"total_tokens_used"`
	LastActivity    *time.Time `json:"last_activity,omitempty"`
}

// Stats computes the conversation summary in a single aggregate query.
func (s *Store) Stats(ctx context.Context, projectID int64) (*ProjectStats, error) {
	var row struct {
		TotalMessages   int64
		UserMessages    int64
		AIMessages      int64
		TotalTokensUsed int64
		LastActivity    *time.Time
	}
	err := s.db.Query(ctx).Raw(`
		SELECT
			count(*)                                                   AS total_messages,
			count(*) FILTER (WHERE message_type = 'user')              AS user_messages,
			count(*) FILTER (WHERE message_type = 'ai')                AS ai_messages,
			coalesce(sum(tokens_used), 0)                              AS total_tokens_used,
			max(created_at)                                            AS last_activity
		FROM chat_messages
		WHERE project_id = ?`, projectID).
		Scan(&row)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}

	return &ProjectStats{
		TotalMessages:   row.TotalMessages,
		UserMessages:    row.UserMessages,
		AIMessages:      row.AIMessages,
		TotalTokensUsed: row.TotalTokensUsed,
		LastActivity:    row.LastActivity,
	}, nil
}

// SetDocumentStatus moves a document through its processing states.
func (s *Store) SetDocumentStatus(ctx context.Context, documentID int64, status string) error {
	affected, err := s.db.UpdateWhere(ctx, &Document{},
		map[string]interface{}{"status": status}, "id = ?", documentID)
	if err != nil {
		return fmt.Errorf("update document %d status: %w", documentID, err)
	}
	if affected == 0 {
		return fmt.Errorf("document %d not found", documentID)
	}
	return nil
}

// CountProcessedDocuments counts the documents of a project that have
// finished indexing and are available for retrieval.
func (s *Store) CountProcessedDocuments(ctx context.Context, projectID int64) (int64, error) {
	var count int64
	err := s.db.Count(ctx, &Document{}, &count,
		"project_id = ? AND status = ?", projectID, DocumentStatusProcessed)
	if err != nil {
		return 0, fmt.Errorf("count processed documents: %w", err)
	}
	return count, nil
}
