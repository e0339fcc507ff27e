package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/runnerr0/waymark/internal/storage"
)

// Execute implements the go-flags Commander interface for URLsCommand.
func (c *URLsCommand) Execute(args []string) error {
	store, db, ctx, err := openStore(c.globals)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	return c.executeWithStore(ctx, store)
}

// window resolves the command's flags into an inclusive [start, end] pair.
func (c *URLsCommand) window() (storage.Timestamp, storage.Timestamp, error) {
	now := time.Now()

	var start storage.Timestamp
	if c.Start != "" {
		ts, err := parseTimestamp(c.Start)
		if err != nil {
			return 0, 0, err
		}
		start = ts
	} else {
		d, err := parseDuration(c.Since)
		if err != nil {
			return 0, 0, err
		}
		start = storage.TimestampFromTime(now.Add(-d))
	}

	end := storage.TimestampFromTime(now)
	if c.End != "" {
		ts, err := parseTimestamp(c.End)
		if err != nil {
			return 0, 0, err
		}
		end = ts
	} else if c.Until != "" {
		d, err := parseDuration(c.Until)
		if err != nil {
			return 0, 0, err
		}
		end = storage.TimestampFromTime(now.Add(-d))
	}

	if end < start {
		return 0, 0, fmt.Errorf("window end %s precedes start %s", end, start)
	}
	return start, end, nil
}

// executeWithStore runs the range query against a provided store (used by tests).
func (c *URLsCommand) executeWithStore(ctx context.Context, store *storage.Store) error {
	start, end, err := c.window()
	if err != nil {
		return err
	}

	urls, err := store.GetVisitedURLs(ctx, start, end, c.IncludeRemote)
	if err != nil {
		return fmt.Errorf("range query: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		out := map[string]interface{}{
			"start": start.String(),
			"end":   end.String(),
			"urls":  urls,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for _, u := range urls {
		fmt.Println(u)
	}
	return nil
}
