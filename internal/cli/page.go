package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/waymark/internal/storage"
)

// pageJSON is the JSON output structure for the page command.
type pageJSON struct {
	URL                 string `json:"url"`
	Guid                string `json:"guid"`
	Title               string `json:"title,omitempty"`
	Hidden              bool   `json:"hidden"`
	Typed               int32  `json:"typed"`
	Frecency            int32  `json:"frecency"`
	VisitCountLocal     int32  `json:"visit_count_local"`
	VisitCountRemote    int32  `json:"visit_count_remote"`
	LastVisitDateLocal  string `json:"last_visit_date_local,omitempty"`
	LastVisitDateRemote string `json:"last_visit_date_remote,omitempty"`
}

// Execute implements the go-flags Commander interface for PageCommand.
func (c *PageCommand) Execute(args []string) error {
	if c.URL == "" {
		return fmt.Errorf("--url is required for page command")
	}

	store, db, ctx, err := openStore(c.globals)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	return c.executeWithStore(ctx, store)
}

// executeWithStore runs the page lookup against a provided store (used by tests).
func (c *PageCommand) executeWithStore(ctx context.Context, store *storage.Store) error {
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
	p := fetched.Page

	if c.globals != nil && c.globals.JSON {
		out := pageJSON{
			URL:              p.URL,
			Guid:             p.Guid,
			Title:            p.Title,
			Hidden:           p.Hidden,
			Typed:            p.Typed,
			Frecency:         p.Frecency,
			VisitCountLocal:  p.VisitCountLocal,
			VisitCountRemote: p.VisitCountRemote,
		}
		if p.LastVisitDateLocal > 0 {
			out.LastVisitDateLocal = p.LastVisitDateLocal.String()
		}
		if p.LastVisitDateRemote > 0 {
			out.LastVisitDateRemote = p.LastVisitDateRemote.String()
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("URL:            %s\n", p.URL)
	fmt.Printf("Guid:           %s\n", p.Guid)
	fmt.Printf("Title:          %s\n", p.Title)
	fmt.Printf("Hidden:         %v\n", p.Hidden)
	fmt.Printf("Typed:          %d\n", p.Typed)
	fmt.Printf("Frecency:       %d\n", p.Frecency)
	fmt.Printf("Local visits:   %d", p.VisitCountLocal)
	if p.LastVisitDateLocal > 0 {
		fmt.Printf(" (last %s)", p.LastVisitDateLocal)
	}
	fmt.Println()
	fmt.Printf("Remote visits:  %d", p.VisitCountRemote)
	if p.LastVisitDateRemote > 0 {
		fmt.Printf(" (last %s)", p.LastVisitDateRemote)
	}
	fmt.Println()
	return nil
}
