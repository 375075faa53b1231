// Package main provides the itree CLI, which loads an interval set and runs
// overlap queries against it.
package main

import (
	"fmt"
	"os"

	"github.com/henderiw/intervaltree/cmd/itree/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
