package migration

import (
	"context"
	"time"

	"evalboard/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations. The schema only uses
// types shared by PostgreSQL and SQLite.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSchemaMigrationsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create schema_migrations table")
	}

	if err := r.createEvaluationTablesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create evaluation_tables table")
	}

	if err := r.createEvaluationRowsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create evaluation_rows table")
	}

	if err := r.createInjuriesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create injuries table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	if err := r.recordVersion(ctx, db); err != nil {
		return errors.Wrap(err, "failed to record schema version")
	}

	return nil
}

func (r *MigrationRunner) createSchemaMigrationsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createEvaluationTablesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS evaluation_tables (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			loaded_at TEXT NOT NULL,
			columns TEXT NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createEvaluationRowsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS evaluation_rows (
			id TEXT PRIMARY KEY,
			table_id TEXT NOT NULL REFERENCES evaluation_tables(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			category TEXT NOT NULL,
			subject TEXT NOT NULL,
			payload TEXT NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createInjuriesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS injuries (
			id TEXT PRIMARY KEY,
			position INTEGER NOT NULL,
			player TEXT NOT NULL,
			occurred_on TEXT NOT NULL,
			cleared_on TEXT,
			injury_type TEXT NOT NULL,
			region TEXT NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_evaluation_rows_table ON evaluation_rows(table_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluation_rows_category ON evaluation_rows(table_id, category)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluation_tables_loaded ON evaluation_tables(loaded_at)`,
		`CREATE INDEX IF NOT EXISTS idx_injuries_player ON injuries(player)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *MigrationRunner) recordVersion(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, db.Rebind(`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`), r.version); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err := db.ExecContext(ctx, db.Rebind(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`),
		r.version, time.Now().UTC().Format(time.RFC3339))
	return err
}
