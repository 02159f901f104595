package backup

import (
	"fmt"
	"io"
	"os"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpfed/cmd/mcpfed/commands/flags"
	"github.com/thoreinstein/mcpfed/internal/backup"
	"github.com/thoreinstein/mcpfed/internal/cli/prompt"
	"github.com/thoreinstein/mcpfed/internal/errors"
	"github.com/thoreinstein/mcpfed/internal/logging"
)

var restoreInteractive bool

// errRestoreAborted is returned when the user leaves the picker.
var errRestoreAborted = errors.New("restore aborted")

// pickSnapshot chooses a snapshot for --interactive. Tests replace it.
var pickSnapshot = defaultPicker

func init() {
	restoreCmd.Flags().BoolVarP(&restoreInteractive, "interactive", "i", false,
		"choose the snapshot from a list")
	Cmd.AddCommand(restoreCmd)
}

var restoreCmd = &cobra.Command{
	Use:   "restore [backup-id]",
	Short: "Restore from a backup",
	Long: `Restore the configuration file from a snapshot.

If no backup ID is provided, restores the most recent snapshot. The
snapshot's checksum is verified before anything is written. Restoring a
snapshot that recorded an absent file removes the file.

The install manifest is not changed. Run "mcpfed doctor" afterwards to see
whether it still matches the restored configuration.`,
	Example: `  # Restore the most recent backup
  mcpfed backup restore

  # Restore a specific backup
  mcpfed backup restore 20260123T100712.000000000

  # Choose from a list
  mcpfed backup restore --interactive

  See Also:
    mcpfed backup list - List available backups`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRestoreWithWriter(cmd.OutOrStdout(), args)
	},
}

func runRestoreWithWriter(w io.Writer, args []string) error {
	if restoreInteractive && len(args) > 0 {
		return errors.NewUserError(errors.New("--interactive does not take a backup ID"), "")
	}

	env, err := flags.Env()
	if err != nil {
		return err
	}
	mgr := env.Backups

	var id string
	switch {
	case len(args) > 0:
		id = args[0]
	case restoreInteractive:
		snaps, err := mgr.List()
		if errors.Is(err, backup.ErrNoBackupsFound) {
			return errors.NewUserError(err, "Backups are created by install and uninstall")
		}
		if err != nil {
			return errors.Wrap(err, "listing backups")
		}
		snap, err := pickSnapshot(snaps)
		if errors.Is(err, errRestoreAborted) {
			fmt.Fprintln(w, "Restore cancelled")
			return nil
		}
		if err != nil {
			return err
		}
		id = snap.ID
	default:
		latest, err := mgr.Latest()
		if err != nil {
			if errors.Is(err, backup.ErrNoBackupsFound) {
				return errors.NewUserError(err, "Backups are created by install and uninstall")
			}
			return errors.Wrap(err, "finding latest backup")
		}
		id = latest.ID
		fmt.Fprintf(w, "Using most recent backup: %s\n", id)
	}

	snap, err := mgr.Restore(id)
	if err != nil {
		return errors.Wrapf(err, "restoring backup %s", id)
	}

	if !snap.Existed {
		fmt.Fprintf(w, "%s removed %s (it did not exist when backup %s was taken)\n",
			okColor.Sprint("✓"), snap.OriginalPath, id)
		return nil
	}
	fmt.Fprintf(w, "%s restored %s from backup %s\n", okColor.Sprint("✓"), snap.OriginalPath, id)
	return nil
}

// defaultPicker uses the fuzzy finder on a terminal and a numbered prompt
// otherwise.
func defaultPicker(snaps []backup.Snapshot) (*backup.Snapshot, error) {
	if !logging.IsTTY(os.Stdin) || !logging.IsTTY(os.Stderr) {
		snap, err := prompt.New().SelectSnapshot(snaps)
		if errors.Is(err, prompt.ErrSelectionCancelled) {
			return nil, errRestoreAborted
		}
		return snap, err
	}

	idx, err := fuzzyfinder.Find(
		snaps,
		func(i int) string {
			return fmt.Sprintf("%s  %s", snaps[i].ID, snaps[i].Reason)
		},
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			s := snaps[i]
			state := fmt.Sprintf("%d bytes, sha256 %s", s.Size, s.SHA256Hash)
			if !s.Existed {
				state = "file did not exist"
			}
			return fmt.Sprintf("ID: %s\nCreated: %s\nReason: %s\nFile: %s\nState: %s\nVersion: %s",
				s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04:05"), s.Reason,
				s.OriginalPath, state, s.ToolVersion)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, errRestoreAborted
		}
		return nil, errors.Wrap(err, "selecting backup")
	}
	return &snaps[idx], nil
}
