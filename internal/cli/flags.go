package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ObserveCommand — record one navigation observation.
type ObserveCommand struct {
	URL    string `long:"url" description:"URL that was visited (required)"`
	Title  string `long:"title" description:"Page title (omit to leave unchanged)"`
	Type   string `long:"type" description:"Visit type: link, typed, bookmark, embed, redirect_permanent, redirect_temporary, download, framed_link, reload; omit for a metadata-only update"`
	At     string `long:"at" description:"Visit time, RFC3339 (default: now)"`
	Remote bool   `long:"remote" description:"Mark the visit as merged in from sync"`
	Error  bool   `long:"error" description:"Navigation failed; record the visit but skip the ranking update"`

	globals *GlobalFlags
	version string
}

// PageCommand — print the reconciled state of one page.
type PageCommand struct {
	URL string `long:"url" description:"Page URL (required)"`

	globals *GlobalFlags
	version string
}

// VisitedCommand — check which of the given URLs were ever visited.
type VisitedCommand struct {
	Args struct {
		URLs []string `positional-arg-name:"URL" description:"URLs to check"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// URLsCommand — list distinct URLs visited inside a time window.
type URLsCommand struct {
	Since         string `long:"since" description:"Window start as a duration before now (e.g. 7d, 24h)" default:"30d"`
	Until         string `long:"until" description:"Window end as a duration before now (default: now)"`
	Start         string `long:"start" description:"Absolute window start, RFC3339 (overrides --since)"`
	End           string `long:"end" description:"Absolute window end, RFC3339 (overrides --until)"`
	IncludeRemote bool   `long:"include-remote" description:"Also count visits merged in from sync"`

	globals *GlobalFlags
	version string
}

// FrecencyCommand — recompute the frecency score of one page.
type FrecencyCommand struct {
	URL           string `long:"url" description:"Page URL (required)"`
	RedirectBoost bool   `long:"redirect-boost" description:"Apply the redirect frecency boost"`

	globals *GlobalFlags
	version string
}

// StatusCommand — show database statistics.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}
