package main

import (
	"fmt"
	"os"

	"github.com/runnerr0/waymark/internal/cli"
)

// version is set via ldflags at build time.
var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		fmt.Fprintf(os.Stderr, "waymark: %v\n", err)
		os.Exit(1)
	}
}
