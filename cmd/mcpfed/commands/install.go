package commands

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpfed/cmd/mcpfed/commands/flags"
	"github.com/thoreinstein/mcpfed/internal/catalog"
	"github.com/thoreinstein/mcpfed/internal/cli"
	"github.com/thoreinstein/mcpfed/internal/installer"
	"github.com/thoreinstein/mcpfed/internal/logging"
)

var (
	installDryRun bool
	installFormat string
)

func init() {
	installCmd.Flags().BoolVarP(&installDryRun, "dry-run", "n", false,
		"show what would change without writing anything")
	addFormatFlag(installCmd, &installFormat)
	rootCmd.AddCommand(installCmd)
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Add catalog servers to the Claude Desktop configuration",
	Long: `Add every catalog server that is not yet configured.

Servers already present under the same name are never overwritten; they are
recorded as pre-existing and will not be removed by uninstall. The
configuration file is backed up before it is changed. Running install
again is safe and changes nothing once everything is in place.`,
	Example: `  # Install the catalog
  mcpfed install

  # Preview the changes
  mcpfed install --dry-run

  # Machine-readable result
  mcpfed install --format json

  See Also: mcpfed plan, mcpfed status, mcpfed uninstall`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

// installView is the structured output of install and plan.
type installView struct {
	DryRun            bool     `json:"dryRun" yaml:"dryRun" toml:"dryRun"`
	Changed           bool     `json:"changed" yaml:"changed" toml:"changed"`
	Installed         []string `json:"installed" yaml:"installed" toml:"installed"`
	AlreadyPresent    []string `json:"alreadyPresent" yaml:"alreadyPresent" toml:"alreadyPresent"`
	NewAlreadyExisted []string `json:"newAlreadyExisted" yaml:"newAlreadyExisted" toml:"newAlreadyExisted"`
	NeedsCredentials  []string `json:"needsCredentials" yaml:"needsCredentials" toml:"needsCredentials"`
	BackupID          string   `json:"backupId,omitempty" yaml:"backupId,omitempty" toml:"backupId,omitempty"`
	ConfigPath        string   `json:"configPath" yaml:"configPath" toml:"configPath"`
	ManifestPath      string   `json:"manifestPath" yaml:"manifestPath" toml:"manifestPath"`
}

func runInstall(cmd *cobra.Command, _ []string) error {
	return runInstallWithWriter(cmd.Context(), cmd.OutOrStdout(), installer.InstallOptions{DryRun: installDryRun}, installFormat)
}

func runInstallWithWriter(ctx context.Context, w io.Writer, opts installer.InstallOptions, format string) error {
	f, err := parseFormatFlag(format)
	if err != nil {
		return err
	}

	env, err := flags.Env()
	if err != nil {
		return err
	}

	inst, err := installer.NewInstaller(env.Deps())
	if err != nil {
		return err
	}

	res, err := inst.Install(ctx, opts)
	if err != nil {
		return err
	}

	view := newInstallView(res, env.Catalog)
	return cli.Render(w, f, view, func(w io.Writer) error {
		printInstallText(w, view)
		return nil
	})
}

func newInstallView(res *installer.InstallResult, cat *catalog.Catalog) installView {
	return installView{
		DryRun:            res.DryRun,
		Changed:           res.Changed,
		Installed:         orEmpty(res.Installed),
		AlreadyPresent:    orEmpty(res.AlreadyPresent),
		NewAlreadyExisted: orEmpty(res.Plan.NewAlreadyExisted.Sorted()),
		NeedsCredentials:  orEmpty(placeholderNames(cat, res.Installed)),
		BackupID:          res.BackupID,
		ConfigPath:        res.ConfigPath,
		ManifestPath:      res.ManifestPath,
	}
}

func printInstallText(w io.Writer, v installView) {
	switch {
	case v.DryRun && len(v.Installed) == 0:
		fmt.Fprintln(w, "Dry run: nothing to install")
	case v.DryRun:
		fmt.Fprintf(w, "Dry run: would install %d server(s) into %s\n", len(v.Installed), v.ConfigPath)
	case !v.Changed:
		fmt.Fprintf(w, "%s Nothing to install; all catalog servers are already configured\n", okColor.Sprint("✓"))
	case len(v.Installed) == 0:
		fmt.Fprintf(w, "%s Recorded existing servers in %s\n", okColor.Sprint("✓"), v.ManifestPath)
	default:
		fmt.Fprintf(w, "%s Installed %d server(s) into %s\n", okColor.Sprint("✓"), len(v.Installed), v.ConfigPath)
	}

	printNames(w, "added", v.Installed)
	printNames(w, "already present", v.AlreadyPresent)
	printNames(w, "pre-existing", v.NewAlreadyExisted)
	if v.BackupID != "" {
		fmt.Fprintf(w, "  %s %s\n", dimColor.Sprintf("%-16s", "backup:"), v.BackupID)
	}

	if len(v.NeedsCredentials) > 0 {
		fmt.Fprintf(w, "\n%s edit %s and replace the %s... values for: %s\n",
			warnColor.Sprint("!"), v.ConfigPath, logging.PlaceholderPrefix, joinNames(v.NeedsCredentials))
		fmt.Fprintf(w, "  %s\n", dimColor.Sprint("run: mcpfed edit"))
	}
}

// placeholderNames returns the names among installed whose catalog env
// still carries placeholder credentials.
func placeholderNames(cat *catalog.Catalog, installed []string) []string {
	var out []string
	for _, name := range installed {
		e, ok := cat.Lookup(name)
		if !ok {
			continue
		}
		for _, key := range slices.Sorted(maps.Keys(e.Launch.Env)) {
			if logging.IsPlaceholder(e.Launch.Env[key]) {
				out = append(out, name)
				break
			}
		}
	}
	return out
}
