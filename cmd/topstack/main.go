// Package main is the entry point for the topstack CLI/TUI.
package main

import (
	"os"

	"github.com/topstack/topstack/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
