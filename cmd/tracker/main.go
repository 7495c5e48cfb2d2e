package main

import (
	"os"

	"github.com/covid19trackerph/tracker/cmd/tracker/commands"
)

// main is the entry point of the tracker CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
