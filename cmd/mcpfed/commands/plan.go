package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpfed/internal/errors"
	"github.com/thoreinstein/mcpfed/internal/installer"
)

var (
	planUninstall bool
	planForce     bool
	planFormat    string
)

func init() {
	planCmd.Flags().BoolVar(&planUninstall, "uninstall", false,
		"show the uninstall plan instead of the install plan")
	planCmd.Flags().BoolVar(&planForce, "force", false,
		"with --uninstall, plan a forced removal")
	addFormatFlag(planCmd, &planFormat)
	rootCmd.AddCommand(planCmd)
}

var planCmd = &cobra.Command{
	Use:   "plan [name...]",
	Short: "Show what install or uninstall would change",
	Long: `Compute the install plan, or with --uninstall the uninstall plan,
without taking a backup or writing anything. Equivalent to --dry-run on
the corresponding command.`,
	Example: `  # What would install add?
  mcpfed plan

  # What would uninstall remove?
  mcpfed plan --uninstall

  # As YAML
  mcpfed plan --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !planUninstall {
			if len(args) > 0 || planForce {
				return errors.NewUserError(errors.New("names and --force need --uninstall"), "Run: mcpfed plan --uninstall")
			}
			return runInstallWithWriter(cmd.Context(), cmd.OutOrStdout(),
				installer.InstallOptions{DryRun: true}, planFormat)
		}
		return runUninstallWithWriter(cmd.Context(), cmd.OutOrStdout(),
			installer.UninstallOptions{DryRun: true, Force: planForce, Names: args}, planFormat)
	},
}
