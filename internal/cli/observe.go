package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/waymark/internal/storage"
)

// Execute implements the go-flags Commander interface for ObserveCommand.
func (c *ObserveCommand) Execute(args []string) error {
	if c.URL == "" {
		return fmt.Errorf("--url is required for observe command")
	}

	store, db, ctx, err := openStore(c.globals)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	return c.executeWithStore(ctx, store)
}

// executeWithStore runs the observe logic against a provided store (used by tests).
func (c *ObserveCommand) executeWithStore(ctx context.Context, store *storage.Store) error {
	obs, err := storage.NewObservation(c.URL)
	if err != nil {
		return err
	}
	if c.Title != "" {
		obs.WithTitle(c.Title)
	}
	if c.Type != "" {
		vt, err := storage.ParseVisitType(c.Type)
		if err != nil {
			return err
		}
		obs.WithVisitType(vt)
	}
	if c.At != "" {
		at, err := parseTimestamp(c.At)
		if err != nil {
			return err
		}
		obs.WithAt(at)
	}
	obs.WithIsRemote(c.Remote).WithIsError(c.Error)

	visitID, err := store.ApplyObservation(ctx, obs)
	if err != nil {
		return fmt.Errorf("applying observation: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		out := map[string]interface{}{
			"url":            obs.URL().String(),
			"visit_recorded": visitID != nil,
		}
		if visitID != nil {
			out["visit_id"] = int64(*visitID)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if visitID == nil {
		fmt.Printf("Updated page metadata for %s (no visit recorded)\n", obs.URL())
		return nil
	}
	fmt.Printf("Recorded visit %s for %s\n", *visitID, obs.URL())
	return nil
}
