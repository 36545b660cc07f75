package quota

import (
	"context"
	"errors"
)

// ErrQuotaExceeded means the user has exhausted today's message budget.
var ErrQuotaExceeded = errors.New("quota: daily message limit reached")

// Role is the subscription tier a user belongs to.
type Role string

const (
	RoleFree  Role = "free"
	RolePro   Role = "pro"
	RoleAdmin Role = "admin"
)

// Service tracks per-user daily message counters.
//
// Check is the cheap pre-flight gate before any expensive work. Commit
// is the authoritative, atomic increment performed only after a turn
// completed; a Commit that would cross the limit fails with
// ErrQuotaExceeded and leaves the counter untouched, so concurrent turns
// can never push a user past the budget.
type Service interface {
	// Check returns ErrQuotaExceeded when the user has no budget left today.
	Check(ctx context.Context, userID int64, role Role) error

	// Commit consumes one unit of today's budget.
	Commit(ctx context.Context, userID int64, role Role) error

	// Usage reports today's consumed count and the applicable limit
	// (limit 0 means unlimited).
	Usage(ctx context.Context, userID int64, role Role) (used int64, limit int64, err error)
}
