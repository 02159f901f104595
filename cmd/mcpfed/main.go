// Package main is the entry point for the mcpfed CLI.
package main

import (
	"os"

	"github.com/thoreinstein/mcpfed/cmd/mcpfed/commands"
)

func main() {
	os.Exit(commands.Execute())
}
