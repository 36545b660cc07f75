package quota

import (
	"context"
	"fmt"

	"github.com/tutuni-ai/backend/internal/postgres"
)

// PostgresService counts messages on the users table using guarded
// updates. The date-boundary reset happens inside the UPDATE itself, so
// there is never a read-then-write window.
type PostgresService struct {
	db  *postgres.Postgres
	cfg *Config
}

var _ Service = (*PostgresService)(nil)

// NewPostgresService builds the postgres quota backend on the shared
// database connection.
func NewPostgresService(db *postgres.Postgres, cfg *Config) *PostgresService {
	return &PostgresService{db: db, cfg: cfg}
}

// todayCount yields today's effective counter for a user: a stale
// last_message_date counts as zero.
const todayCountExpr = `CASE WHEN last_message_date = CURRENT_DATE THEN daily_message_count ELSE 0 END`

// Check reports whether the user still has budget today.
func (s *PostgresService) Check(ctx context.Context, userID int64, role Role) error {
	limit := s.cfg.limitFor(role)
	if limit == 0 {
		return nil
	}

	used, err := s.todayCount(ctx, userID)
	if err != nil {
		return err
	}
	if used >= limit {
		return ErrQuotaExceeded
	}
	return nil
}

// Commit consumes one unit via a single guarded UPDATE. When the guard
// does not match (budget exhausted) zero rows are affected and the
// counter is untouched.
func (s *PostgresService) Commit(ctx context.Context, userID int64, role Role) error {
	limit := s.cfg.limitFor(role)

	affected, err := s.db.Exec(ctx, fmt.Sprintf(`
		UPDATE users
		SET daily_message_count = %s + 1,
		    last_message_date = CURRENT_DATE
		WHERE id = ? AND (? = 0 OR %s < ?)`, todayCountExpr, todayCountExpr),
		userID, limit, limit)
	if err != nil {
		return fmt.Errorf("quota: commit: %w", err)
	}
	if affected == 0 {
		// Either the budget is gone or the user row is missing.
		var exists int64
		if err := s.db.Query(ctx).Raw(`SELECT count(*) FROM users WHERE id = ?`, userID).Scan(&exists); err != nil {
			return fmt.Errorf("quota: commit: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("quota: user %d not found", userID)
		}
		return ErrQuotaExceeded
	}
	return nil
}

// Usage reports today's count and the applicable limit.
func (s *PostgresService) Usage(ctx context.Context, userID int64, role Role) (int64, int64, error) {
	used, err := s.todayCount(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return used, s.cfg.limitFor(role), nil
}

func (s *PostgresService) todayCount(ctx context.Context, userID int64) (int64, error) {
	var used int64
	err := s.db.Query(ctx).
		Raw(fmt.Sprintf(`SELECT %s FROM users WHERE id = ?`, todayCountExpr), userID).
		Scan(&used)
	if err != nil {
		return 0, fmt.Errorf("quota: read counter for user %d: %w", userID, err)
	}
	return used, nil
}
