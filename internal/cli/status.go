package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/waymark/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string         `json:"version"`
	DatabaseSizeBytes int64          `json:"database_size_bytes"`
	TotalPages        int64          `json:"total_pages"`
	TotalVisits       int64          `json:"total_visits"`
	OldestVisit       string         `json:"oldest_visit,omitempty"`
	NewestVisit       string         `json:"newest_visit,omitempty"`
	TopPages          []pageRankJSON `json:"top_pages"`
}

type pageRankJSON struct {
	URL        string `json:"url"`
	Frecency   int32  `json:"frecency"`
	VisitCount int64  `json:"visit_count"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	store, db, ctx, err := openStore(c.globals)
	if err != nil {
		return err
	}
	defer db.Close()

	return c.executeWithStore(ctx, store, db)
}

// executeWithStore runs status against a provided store and db (for testing).
func (c *StatusCommand) executeWithStore(ctx context.Context, store *storage.Store, db *sql.DB) error {
	stats, err := store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	dbSize := databaseSize(db)

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(stats, dbSize)
	}
	return c.printStatusHuman(stats, dbSize)
}

func (c *StatusCommand) printStatusHuman(stats *storage.Stats, dbSize int64) error {
	fmt.Println("Waymark Status")
	fmt.Println("==============")
	fmt.Printf("Version:   %s\n", c.version)
	fmt.Printf("Database:  %s\n", formatBytes(dbSize))
	fmt.Printf("Pages:     %d\n", stats.TotalPages)
	fmt.Printf("Visits:    %d\n", stats.TotalVisits)

	if stats.TotalVisits > 0 {
		fmt.Printf("Oldest:    %s\n", stats.OldestVisit)
		fmt.Printf("Newest:    %s\n", stats.NewestVisit)
	}

	if len(stats.TopPages) > 0 {
		fmt.Println()
		fmt.Println("Top pages by frecency:")
		for _, p := range stats.TopPages {
			fmt.Printf("  %8d  %s (%d visits)\n", p.Frecency, p.URL, p.VisitCount)
		}
	}

	return nil
}

func (c *StatusCommand) printStatusJSON(stats *storage.Stats, dbSize int64) error {
	out := statusJSON{
		Version:           c.version,
		DatabaseSizeBytes: dbSize,
		TotalPages:        stats.TotalPages,
		TotalVisits:       stats.TotalVisits,
		TopPages:          make([]pageRankJSON, len(stats.TopPages)),
	}

	if stats.TotalVisits > 0 {
		out.OldestVisit = stats.OldestVisit.String()
		out.NewestVisit = stats.NewestVisit.String()
	}

	for i, p := range stats.TopPages {
		out.TopPages[i] = pageRankJSON{URL: p.URL, Frecency: p.Frecency, VisitCount: p.VisitCount}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// databaseSize queries SQLite for the store's size in bytes; works for both
// on-disk and in-memory databases.
func databaseSize(db *sql.DB) int64 {
	var pageCount, pageSize int64
	if err := db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
