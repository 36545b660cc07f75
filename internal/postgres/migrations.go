package postgres

// Migrate runs GORM auto-migration for the provided models.
func (p *Postgres) Migrate(models ...interface{}) error {
	return p.DB().AutoMigrate(models...)
}
