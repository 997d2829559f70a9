package main

import (
	"os"

	"github.com/harshul/nsequant/cmd/nsequant/commands"
)

// main is the entry point for the nsequant CLI
// ⭐ Unified CLI entry point: go run ./cmd/nsequant [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
