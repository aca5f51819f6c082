// Package main provides the entry point for the bigindex CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/bigindex/cmd/bigindex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
