package main

import (
	"os"

	"github.com/wrenlab/sectorscope/cmd/sectorscope/commands"
)

// main is the entry point for the sectorscope CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
