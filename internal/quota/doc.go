// Package quota enforces the per-user daily message budget.
//
// Two backends implement the same Service contract:
//
//   - redis: day-keyed counters incremented by an atomic Lua script that
//     rolls back an increment crossing the limit. The date-boundary
//     reset is implicit in the key; a two-day TTL garbage-collects old
//     counters.
//   - postgres: a guarded UPDATE on the users table whose WHERE clause
//     both resets stale counters and refuses increments past the limit,
//     judged by rows affected.
//
// Both commits are single atomic operations, so concurrent turns can
// never push a user past the budget. Pro and admin roles are unlimited.
package quota
