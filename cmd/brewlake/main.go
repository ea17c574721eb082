package main

import (
	"os"

	"github.com/dmoraes/brewlake/cmd/brewlake/commands"
)

// main is the entry point for the brewlake CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
