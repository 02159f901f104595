// Package backup provides CLI commands for managing configuration backups.
package backup

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	okColor   = color.New(color.FgGreen)
	idColor   = color.New(color.FgGreen)
	dimColor  = color.New(color.FgHiBlack)
	boldColor = color.New(color.Bold)
)

// Cmd is the root backup command.
var Cmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage configuration backups",
	Long: `Manage snapshots of the Claude Desktop configuration file.

mcpfed snapshots the configuration before every install or uninstall that
changes it. Snapshots are never deleted automatically; use prune to remove
old ones.`,
	Example: `  # List snapshots
  mcpfed backup list

  # Restore the most recent snapshot
  mcpfed backup restore

  # Pick a snapshot interactively
  mcpfed backup restore --interactive

  # Keep only the 3 most recent snapshots
  mcpfed backup prune --keep 3

  See Also:
    mcpfed backup list    - List available backups
    mcpfed backup restore - Restore from a backup
    mcpfed backup prune   - Remove old backups`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}
