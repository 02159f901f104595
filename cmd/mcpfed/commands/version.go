package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpfed/cmd"
	"github.com/thoreinstein/mcpfed/internal/backup"
	"github.com/thoreinstein/mcpfed/internal/manifest"
)

func init() {
	// Records written by this build carry its version.
	manifest.Version = cmd.Version
	backup.Version = cmd.Version

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version, commit, and build date of mcpfed.`,
	Args:  cobra.NoArgs,
	Run: func(c *cobra.Command, _ []string) {
		printVersion(c.OutOrStdout())
	},
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "mcpfed version %s\n", cmd.Version)
	fmt.Fprintf(w, "  commit: %s\n", cmd.Commit)
	fmt.Fprintf(w, "  built:  %s\n", cmd.Date)
}
