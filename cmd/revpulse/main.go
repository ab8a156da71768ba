// Package main is the entry point for the revpulse CLI.
package main

import (
	"os"

	"revpulse/cmd/revpulse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
