// Package main is the entry point for the cairn CLI.
package main

import (
	"os"

	"github.com/thoreinstein/cairn/cmd/cairn/commands"
)

func main() {
	os.Exit(commands.Execute())
}
