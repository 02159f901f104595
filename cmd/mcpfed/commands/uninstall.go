package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpfed/cmd/mcpfed/commands/flags"
	"github.com/thoreinstein/mcpfed/internal/cli"
	"github.com/thoreinstein/mcpfed/internal/cli/prompt"
	"github.com/thoreinstein/mcpfed/internal/errors"
	"github.com/thoreinstein/mcpfed/internal/installer"
)

var (
	uninstallDryRun bool
	uninstallForce  bool
	uninstallYes    bool
	uninstallFormat string
)

// confirmer asks before a forced uninstall. Tests replace it.
var confirmer = func(question string) (bool, error) {
	return prompt.New().Confirm(question)
}

func init() {
	uninstallCmd.Flags().BoolVarP(&uninstallDryRun, "dry-run", "n", false,
		"show what would change without writing anything")
	uninstallCmd.Flags().BoolVar(&uninstallForce, "force", false,
		"remove every catalog server, including ones mcpfed did not add")
	uninstallCmd.Flags().BoolVarP(&uninstallYes, "yes", "y", false,
		"skip the confirmation prompt for --force")
	addFormatFlag(uninstallCmd, &uninstallFormat)
	rootCmd.AddCommand(uninstallCmd)
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall [name...]",
	Short: "Remove the servers mcpfed installed",
	Long: `Remove the servers recorded as installed by mcpfed.

Servers that were configured before mcpfed first ran are left in place, as
is everything outside the catalog. Pass names to remove only some servers.

--force removes every catalog server present in the configuration
regardless of who added it. It asks for confirmation unless --yes is given.`,
	Example: `  # Remove everything mcpfed installed
  mcpfed uninstall

  # Remove two servers only
  mcpfed uninstall memory sqlite

  # Preview the changes
  mcpfed uninstall --dry-run

  # Remove all catalog servers, even pre-existing ones
  mcpfed uninstall --force --yes

  See Also: mcpfed status, mcpfed backup restore`,
	RunE: runUninstall,
}

// uninstallView is the structured output of uninstall.
type uninstallView struct {
	DryRun             bool     `json:"dryRun" yaml:"dryRun" toml:"dryRun"`
	Changed            bool     `json:"changed" yaml:"changed" toml:"changed"`
	Force              bool     `json:"force" yaml:"force" toml:"force"`
	NothingToUninstall bool     `json:"nothingToUninstall" yaml:"nothingToUninstall" toml:"nothingToUninstall"`
	Removed            []string `json:"removed" yaml:"removed" toml:"removed"`
	Preserved          []string `json:"preserved" yaml:"preserved" toml:"preserved"`
	Missing            []string `json:"missing" yaml:"missing" toml:"missing"`
	ManifestCleared    bool     `json:"manifestCleared" yaml:"manifestCleared" toml:"manifestCleared"`
	BackupID           string   `json:"backupId,omitempty" yaml:"backupId,omitempty" toml:"backupId,omitempty"`
	ConfigPath         string   `json:"configPath" yaml:"configPath" toml:"configPath"`
	ManifestPath       string   `json:"manifestPath" yaml:"manifestPath" toml:"manifestPath"`
}

func runUninstall(cmd *cobra.Command, args []string) error {
	opts := installer.UninstallOptions{
		DryRun: uninstallDryRun,
		Force:  uninstallForce,
		Names:  args,
	}

	if opts.Force && !opts.DryRun && !uninstallYes {
		ok, err := confirmer("Remove every catalog server, including ones you configured yourself?")
		if err != nil {
			return errors.Wrap(err, "confirming --force")
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
			return nil
		}
	}

	return runUninstallWithWriter(cmd.Context(), cmd.OutOrStdout(), opts, uninstallFormat)
}

func runUninstallWithWriter(ctx context.Context, w io.Writer, opts installer.UninstallOptions, format string) error {
	f, err := parseFormatFlag(format)
	if err != nil {
		return err
	}

	env, err := flags.Env()
	if err != nil {
		return err
	}

	var unknown []string
	for _, name := range opts.Names {
		if !env.Catalog.Has(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return errors.NewUserError(
			errors.Newf("not in the catalog: %s", joinNames(unknown)),
			"Run: mcpfed catalog list")
	}

	u, err := installer.NewUninstaller(env.Deps())
	if err != nil {
		return err
	}

	res, err := u.Uninstall(ctx, opts)
	if err != nil {
		return err
	}

	view := uninstallView{
		DryRun:             res.DryRun,
		Changed:            res.Changed,
		Force:              opts.Force,
		NothingToUninstall: res.NothingToUninstall,
		Removed:            orEmpty(res.Removed),
		Preserved:          orEmpty(res.Preserved),
		Missing:            orEmpty(res.Missing),
		ManifestCleared:    res.ManifestCleared,
		BackupID:           res.BackupID,
		ConfigPath:         res.ConfigPath,
		ManifestPath:       res.ManifestPath,
	}
	return cli.Render(w, f, view, func(w io.Writer) error {
		printUninstallText(w, view)
		return nil
	})
}

func printUninstallText(w io.Writer, v uninstallView) {
	switch {
	case v.NothingToUninstall:
		fmt.Fprintln(w, "Nothing to uninstall: mcpfed has not installed anything")
		fmt.Fprintln(w, dimColor.Sprint("Use --force to remove catalog servers regardless of who added them"))
		return
	case v.DryRun && len(v.Removed) == 0:
		fmt.Fprintln(w, "Dry run: nothing to remove")
	case v.DryRun:
		fmt.Fprintf(w, "Dry run: would remove %d server(s) from %s\n", len(v.Removed), v.ConfigPath)
	case !v.Changed:
		fmt.Fprintf(w, "%s Nothing to remove\n", okColor.Sprint("✓"))
	default:
		fmt.Fprintf(w, "%s Removed %d server(s) from %s\n", okColor.Sprint("✓"), len(v.Removed), v.ConfigPath)
	}

	printNames(w, "removed", v.Removed)
	printNames(w, "kept", v.Preserved)
	printNames(w, "already gone", v.Missing)
	if v.BackupID != "" {
		fmt.Fprintf(w, "  %s %s\n", dimColor.Sprintf("%-16s", "backup:"), v.BackupID)
	}
	if v.ManifestCleared {
		fmt.Fprintf(w, "  %s %s\n", dimColor.Sprintf("%-16s", "manifest:"), "removed")
	}
}
