package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/runnerr0/waymark/internal/logging"
)

// migration is one versioned step of the history schema. Steps run inside
// their own transaction and are recorded in schema_migrations, so a
// half-applied step never marks itself done.
type migration struct {
	version int
	name    string
	apply   func(ctx context.Context, tx *sql.Tx) error
}

// schemaMigrations lists every step in order. Append only; released
// versions never change.
var schemaMigrations = []migration{
	{version: 1, name: "initial_schema", apply: migrateV001},
}

// MigrationRunner brings a history database up to the current schema
// version.
type MigrationRunner struct {
	db *sql.DB
}

func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{db: db}
}

// Run sets the connection pragmas the store relies on (WAL, foreign keys),
// then applies every migration newer than the database's recorded version.
func (r *MigrationRunner) Run(ctx context.Context) error {
	log := logging.FromContext(ctx)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := r.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	current, err := r.currentVersion(ctx)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range schemaMigrations {
		if m.version <= current {
			continue
		}
		log.Debug().
			Int("version", m.version).
			Str("migration", m.name).
			Msg("applying schema migration")
		if err := r.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
		}
	}

	return nil
}

// currentVersion returns the highest recorded migration version, 0 for a
// fresh database.
func (r *MigrationRunner) currentVersion(ctx context.Context) (int, error) {
	var version int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM schema_migrations",
	).Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// applyMigration executes one step and records it, all in one transaction.
func (r *MigrationRunner) applyMigration(ctx context.Context, m migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := m.apply(ctx, tx); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		m.version, m.name,
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}

	return tx.Commit()
}
