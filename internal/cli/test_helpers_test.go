package cli

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/runnerr0/waymark/internal/config"
	"github.com/runnerr0/waymark/internal/storage"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// openTestStore opens a migrated store on a temp database file, going through
// the same path as the real commands.
func openTestStore(t *testing.T) (*storage.Store, *sql.DB) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "waymark.db")
	store, db, err := openStoreAt(context.Background(), dbPath, config.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store, db
}

// seedVisit applies a link observation so the page exists with one visit.
func seedVisit(t *testing.T, store *storage.Store, rawURL string) {
	t.Helper()
	obs, err := storage.NewObservation(rawURL)
	require.NoError(t, err)
	_, err = store.ApplyObservation(context.Background(), obs.WithVisitType(storage.VisitTypeLink))
	require.NoError(t, err)
}
