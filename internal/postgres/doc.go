// Package postgres wraps GORM with connection monitoring, automatic
// reconnection, a fluent query builder, and transaction support.
//
// The chat store and the postgres quota backend build on this package. Row
// locking (ForUpdate) and guarded updates (UpdateWhere) are the primitives
// used to keep the per-user quota counter race-free.
//
// CRUD and query methods return raw GORM errors; normalize with
// TranslateError before matching against the package sentinels:
//
//	if err := db.First(ctx, &user, id); postgres.IsNotFound(err) {
//	    // handle missing user
//	}
package postgres
