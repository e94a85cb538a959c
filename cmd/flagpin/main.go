// Command flagpin forces feature flags to fixed values in a SQLite flag store.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/flagpin/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
