package postgres

import (
	"context"

	"gorm.io/gorm"
)

// cloneWithTx returns a shallow copy of Postgres whose active connection is
// the transaction. Monitoring state is shared with the parent.
func (p *Postgres) cloneWithTx(tx *gorm.DB) *Postgres {
	clone := &Postgres{
		cfg:             p.cfg,
		shutdownSignal:  p.shutdownSignal,
		retryChanSignal: p.retryChanSignal,
	}
	clone.client.Store(tx)
	return clone
}

// Transaction executes fn inside a database transaction. The callback
// receives a transaction-scoped *Postgres; returning an error rolls the
// transaction back, returning nil commits it.
//
// Example:
//
//	err := db.Transaction(ctx, func(tx *postgres.Postgres) error {
//	    if err := tx.Create(ctx, userMsg); err != nil {
//	        return err
//	    }
//	    return tx.Create(ctx, aiMsg)
//	})
func (p *Postgres) Transaction(ctx context.Context, fn func(tx *Postgres) error) error {
	return p.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(p.cloneWithTx(tx))
	})
}
