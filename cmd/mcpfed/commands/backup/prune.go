package backup

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpfed/cmd/mcpfed/commands/flags"
	"github.com/thoreinstein/mcpfed/internal/backup"
	"github.com/thoreinstein/mcpfed/internal/errors"
)

var pruneKeep int

func init() {
	pruneCmd.Flags().IntVar(&pruneKeep, "keep", backup.DefaultRetentionCount,
		"Number of backups to retain (default: backup_retention from config)")
	Cmd.AddCommand(pruneCmd)
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old backups",
	Long: `Remove old snapshots beyond the retention count.

Keeps the backup_retention most recent snapshots (10 unless configured)
and removes older ones. Use --keep to override.`,
	Example: `  # Keep the configured number of backups
  mcpfed backup prune

  # Keep only the 3 most recent backups
  mcpfed backup prune --keep 3

  # Remove all backups (keep 0)
  mcpfed backup prune --keep 0

  See Also:
    mcpfed backup list - List available backups`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		keep := pruneKeep
		if !cmd.Flags().Changed("keep") {
			if env, err := flags.Env(); err == nil {
				keep = env.Config.BackupRetention
			}
		}
		return runPruneWithWriter(cmd.OutOrStdout(), keep)
	},
}

func runPruneWithWriter(w io.Writer, keep int) error {
	if keep < 0 {
		return errors.NewUserError(errors.New("--keep must be non-negative"), "")
	}

	env, err := flags.Env()
	if err != nil {
		return err
	}

	removed, err := env.Backups.Prune(keep)
	if err != nil {
		return errors.Wrap(err, "pruning backups")
	}

	if removed == 0 {
		fmt.Fprintln(w, "No backups to prune")
		return nil
	}

	fmt.Fprintf(w, "%s removed %d old backup(s), kept %d\n", okColor.Sprint("✓"), removed, keep)
	return nil
}
