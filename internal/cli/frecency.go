package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/waymark/internal/storage"
)

// Execute implements the go-flags Commander interface for FrecencyCommand.
func (c *FrecencyCommand) Execute(args []string) error {
	if c.URL == "" {
		return fmt.Errorf("--url is required for frecency command")
	}

	store, db, ctx, err := openStore(c.globals)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	return c.executeWithStore(ctx, store)
}

// executeWithStore runs the recompute against a provided store (used by tests).
func (c *FrecencyCommand) executeWithStore(ctx context.Context, store *storage.Store) error {
	u, err := parseURL(c.URL)
	if err != nil {
		return err
	}

	fetched, err := store.FetchPageInfo(ctx, u)
	if err != nil {
		return fmt.Errorf("fetching page: %w", err)
	}
	if fetched == nil {
		return fmt.Errorf("page %s not found", u)
	}

	if err := store.UpdateFrecency(ctx, fetched.Page.ID, c.RedirectBoost); err != nil {
		return fmt.Errorf("updating frecency: %w", err)
	}

	refetched, err := store.FetchPageInfo(ctx, u)
	if err != nil {
		return fmt.Errorf("fetching page: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		out := map[string]interface{}{
			"url":      refetched.Page.URL,
			"frecency": refetched.Page.Frecency,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Frecency for %s: %d\n", refetched.Page.URL, refetched.Page.Frecency)
	return nil
}
