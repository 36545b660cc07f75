package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Query starts a fluent query against the current connection.
//
// Example:
//
//	var messages []ChatMessage
//	err := db.Query(ctx).
//	    Where("project_id = ?", projectID).
//	    Order("created_at DESC").
//	    Limit(50).
//	    Find(&messages)
func (p *Postgres) Query(ctx context.Context) *QueryBuilder {
	return &QueryBuilder{db: p.DB().WithContext(ctx)}
}

// QueryBuilder wraps GORM's chainable query API. Modifier methods return the
// builder; terminal methods (Find, First, Count, Updates, Delete, Scan,
// Pluck) execute the query.
type QueryBuilder struct {
	db *gorm.DB
}

// Select specifies the fields to retrieve.
func (qb *QueryBuilder) Select(query interface{}, args ...interface{}) *QueryBuilder {
	qb.db = qb.db.Select(query, args...)
	return qb
}

// Where adds an AND condition.
func (qb *QueryBuilder) Where(query interface{}, args ...interface{}) *QueryBuilder {
	qb.db = qb.db.Where(query, args...)
	return qb
}

// Or adds an OR condition.
func (qb *QueryBuilder) Or(query interface{}, args ...interface{}) *QueryBuilder {
	qb.db = qb.db.Or(query, args...)
	return qb
}

// Order adds an ORDER BY clause.
func (qb *QueryBuilder) Order(value interface{}) *QueryBuilder {
	qb.db = qb.db.Order(value)
	return qb
}

// Group adds a GROUP BY clause.
func (qb *QueryBuilder) Group(query string) *QueryBuilder {
	qb.db = qb.db.Group(query)
	return qb
}

// Limit caps the number of returned rows.
func (qb *QueryBuilder) Limit(limit int) *QueryBuilder {
	qb.db = qb.db.Limit(limit)
	return qb
}

// Offset skips the first rows of the result.
func (qb *QueryBuilder) Offset(offset int) *QueryBuilder {
	qb.db = qb.db.Offset(offset)
	return qb
}

// Model sets the model the query operates on.
func (qb *QueryBuilder) Model(value interface{}) *QueryBuilder {
	qb.db = qb.db.Model(value)
	return qb
}

// Raw replaces the query with raw SQL.
func (qb *QueryBuilder) Raw(sql string, values ...interface{}) *QueryBuilder {
	qb.db = qb.db.Raw(sql, values...)
	return qb
}

// ForUpdate acquires a row-level write lock (SELECT ... FOR UPDATE).
// Used inside transactions to serialize quota counter updates.
func (qb *QueryBuilder) ForUpdate() *QueryBuilder {
	qb.db = qb.db.Clauses(clause.Locking{Strength: "UPDATE"})
	return qb
}

// ForShare acquires a row-level read lock (SELECT ... FOR SHARE).
func (qb *QueryBuilder) ForShare() *QueryBuilder {
	qb.db = qb.db.Clauses(clause.Locking{Strength: "SHARE"})
	return qb
}

// Find executes the query and stores matching rows in dest.
func (qb *QueryBuilder) Find(dest interface{}) error {
	return qb.db.Find(dest).Error
}

// First executes the query and stores the first matching row in dest.
func (qb *QueryBuilder) First(dest interface{}) error {
	return qb.db.First(dest).Error
}

// Scan executes the query and scans the result into dest.
func (qb *QueryBuilder) Scan(dest interface{}) error {
	return qb.db.Scan(dest).Error
}

// Count stores the number of matching rows in count.
func (qb *QueryBuilder) Count(count *int64) error {
	return qb.db.Count(count).Error
}

// Pluck queries a single column into dest. Returns the row count.
func (qb *QueryBuilder) Pluck(column string, dest interface{}) (int64, error) {
	res := qb.db.Pluck(column, dest)
	return res.RowsAffected, res.Error
}

// Updates applies values to the matching rows. Returns the affected count.
func (qb *QueryBuilder) Updates(values interface{}) (int64, error) {
	res := qb.db.Updates(values)
	return res.RowsAffected, res.Error
}

// Delete removes the matching rows. Returns the deleted count.
func (qb *QueryBuilder) Delete(value interface{}) (int64, error) {
	res := qb.db.Delete(value)
	return res.RowsAffected, res.Error
}
