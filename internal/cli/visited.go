package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/runnerr0/waymark/internal/storage"
)

// Execute implements the go-flags Commander interface for VisitedCommand.
func (c *VisitedCommand) Execute(args []string) error {
	if len(c.Args.URLs) == 0 {
		return fmt.Errorf("at least one URL is required for visited command")
	}

	store, db, ctx, err := openStore(c.globals)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	return c.executeWithStore(ctx, store)
}

// executeWithStore runs the visited check against a provided store (used by tests).
func (c *VisitedCommand) executeWithStore(ctx context.Context, store *storage.Store) error {
	urls := make([]*url.URL, len(c.Args.URLs))
	for i, raw := range c.Args.URLs {
		u, err := parseURL(raw)
		if err != nil {
			return err
		}
		urls[i] = u
	}

	visited, err := store.GetVisited(ctx, urls)
	if err != nil {
		return fmt.Errorf("visited lookup: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		out := make([]map[string]interface{}, len(urls))
		for i, u := range urls {
			out[i] = map[string]interface{}{
				"url":     u.String(),
				"visited": visited[i],
			}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for i, u := range urls {
		mark := " "
		if visited[i] {
			mark = "x"
		}
		fmt.Printf("[%s] %s\n", mark, u)
	}
	return nil
}
