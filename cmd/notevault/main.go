// Package main is the entry point for the notevault binary.
package main

import (
	"fmt"
	"os"

	"github.com/atarasov/NoteVault/internal/cli"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	if err := cli.Execute(version, buildDate); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
