package postgres

import "context"

// Find finds records that match the given conditions.
func (p *Postgres) Find(ctx context.Context, dest interface{}, conditions ...interface{}) error {
	return p.DB().WithContext(ctx).Find(dest, conditions...).Error
}

// First finds the first record that matches the given conditions.
func (p *Postgres) First(ctx context.Context, dest interface{}, conditions ...interface{}) error {
	return p.DB().WithContext(ctx).First(dest, conditions...).Error
}

// Create inserts a new record.
func (p *Postgres) Create(ctx context.Context, value interface{}) error {
	return p.DB().WithContext(ctx).Create(value).Error
}

// Save updates a record, inserting it if it has no primary key.
func (p *Postgres) Save(ctx context.Context, value interface{}) error {
	return p.DB().WithContext(ctx).Save(value).Error
}

// Update applies attrs (map or struct) to records matching the model's
// primary key. Returns the number of affected rows.
func (p *Postgres) Update(ctx context.Context, model interface{}, attrs interface{}) (int64, error) {
	res := p.DB().WithContext(ctx).Model(model).Updates(attrs)
	return res.RowsAffected, res.Error
}

// UpdateWhere applies attrs to records matching the condition. Returns the
// number of affected rows, which callers use to implement guarded updates.
func (p *Postgres) UpdateWhere(ctx context.Context, model interface{}, attrs interface{}, condition string, args ...interface{}) (int64, error) {
	res := p.DB().WithContext(ctx).Model(model).Where(condition, args...).Updates(attrs)
	return res.RowsAffected, res.Error
}

// Delete removes records matching the conditions. Returns the number of
// deleted rows.
func (p *Postgres) Delete(ctx context.Context, value interface{}, conditions ...interface{}) (int64, error) {
	res := p.DB().WithContext(ctx).Delete(value, conditions...)
	return res.RowsAffected, res.Error
}

// Count counts records of the model matching the condition.
func (p *Postgres) Count(ctx context.Context, model interface{}, count *int64, condition string, args ...interface{}) error {
	return p.DB().WithContext(ctx).Model(model).Where(condition, args...).Count(count).Error
}

// Exec runs raw SQL. Returns the number of affected rows.
func (p *Postgres) Exec(ctx context.Context, sql string, values ...interface{}) (int64, error) {
	res := p.DB().WithContext(ctx).Exec(sql, values...)
	return res.RowsAffected, res.Error
}
