package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Observe  *ObserveCommand
	Page     *PageCommand
	Visited  *VisitedCommand
	URLs     *URLsCommand
	Frecency *FrecencyCommand
	Status   *StatusCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "waymark"
	parser.LongDescription = "Local browsing-history store: record navigation observations and query the reconciled page state."

	cmds := &commands{
		Observe:  &ObserveCommand{globals: &globals, version: version},
		Page:     &PageCommand{globals: &globals, version: version},
		Visited:  &VisitedCommand{globals: &globals, version: version},
		URLs:     &URLsCommand{globals: &globals, version: version},
		Frecency: &FrecencyCommand{globals: &globals, version: version},
		Status:   &StatusCommand{globals: &globals, version: version},
	}

	parser.AddCommand("observe", "Record a navigation observation", "Record one navigation observation: find-or-create the page, apply title/hidden/typed changes, insert the visit, recompute frecency.", cmds.Observe)
	parser.AddCommand("page", "Show a page's reconciled state", "Fetch and print the stored state of a page by URL.", cmds.Page)
	parser.AddCommand("visited", "Check whether URLs were visited", "Check which of the given URLs were ever visited; prints one boolean per URL in input order.", cmds.Visited)
	parser.AddCommand("urls", "List URLs visited in a time window", "List the distinct URLs with at least one visit inside a timestamp window.", cmds.URLs)
	parser.AddCommand("frecency", "Recompute a page's frecency", "Recompute and persist the frecency score of one page.", cmds.Frecency)
	parser.AddCommand("status", "Show database statistics", "Show page/visit totals, visit date range, and top pages by frecency.", cmds.Status)

	return parser, &globals, cmds
}

// Run is the main entry point for the Waymark CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("waymark %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
