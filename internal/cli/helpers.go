package cli

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/runnerr0/waymark/internal/config"
	"github.com/runnerr0/waymark/internal/logging"
	"github.com/runnerr0/waymark/internal/storage"
)

// loadConfig resolves the config file from --config or the default path.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals != nil && globals.Config != "" {
		return config.LoadOrCreateAt(globals.Config)
	}
	return config.LoadOrCreate()
}

// openStore opens the configured database, runs migrations, and returns a
// ready store plus a context carrying the configured logger.
func openStore(globals *GlobalFlags) (*storage.Store, *sql.DB, context.Context, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, nil, nil, fmt.Errorf("create database directory: %w", err)
	}

	logCfg := logging.DefaultConfig()
	if level, perr := logging.ParseLevel(cfg.Logging.Level); perr == nil {
		logCfg.Level = level
	}
	if globals != nil && globals.Verbose {
		logCfg.Level = zerolog.DebugLevel
	}
	if cfg.Logging.Format != "" {
		logCfg.Format = cfg.Logging.Format
	}
	ctx := logging.WithContext(context.Background(), logging.New(logCfg))

	store, db, err := openStoreAt(ctx, dbPath, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	return store, db, ctx, nil
}

// openStoreAt opens the SQLite database at dbPath with migrations applied.
// Migration progress logs through the logger attached to ctx.
func openStoreAt(ctx context.Context, dbPath string, cfg *config.Config) (*storage.Store, *sql.DB, error) {
	dsn := dbPath + "?_foreign_keys=on"
	if cfg != nil && cfg.Storage.SQLiteJournalMode != "" {
		dsn += "&_journal_mode=" + cfg.Storage.SQLiteJournalMode
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	// Single-writer model: all mutation is serialized through one
	// connection.
	db.SetMaxOpenConns(1)

	runner := storage.NewMigrationRunner(db)
	if err := runner.Run(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	var opts []storage.Option
	if cfg != nil {
		opts = append(opts, storage.WithFrecencySettings(cfg.Frecency.Settings()))
	}
	return storage.New(db, opts...), db, nil
}

// parseURL validates a CLI-supplied URL the same way the store does.
func parseURL(raw string) (*url.URL, error) {
	obs, err := storage.NewObservation(raw)
	if err != nil {
		return nil, err
	}
	return obs.URL(), nil
}

// parseDuration parses a human-friendly duration string like "30d", "7d",
// "24h", "2w".
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("invalid duration: empty string")
	}

	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]

	n, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	switch suffix {
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	default:
		return 0, fmt.Errorf("invalid duration: %q (use d, h, w, or m suffix)", s)
	}
}

// parseTimestamp parses an RFC3339 time or unix milliseconds.
func parseTimestamp(s string) (storage.Timestamp, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return storage.TimestampFromTime(t), nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return storage.Timestamp(ms), nil
	}
	return 0, fmt.Errorf("invalid time %q (use RFC3339 or unix milliseconds)", s)
}
