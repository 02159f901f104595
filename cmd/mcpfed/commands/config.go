package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpfed/cmd/mcpfed/commands/flags"
	"github.com/thoreinstein/mcpfed/internal/cli"
	"github.com/thoreinstein/mcpfed/internal/config"
	"github.com/thoreinstein/mcpfed/internal/paths"
)

var configFormat string

func init() {
	configShowCmd.Flags().StringVarP(&configFormat, "format", "o", string(cli.FormatYAML),
		"output format: yaml, json, toml")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect mcpfed configuration",
	Long: `Inspect the configuration mcpfed resolved from config.yaml, MCPFED_*
environment variables and built-in defaults.

Without a subcommand, shows the resolved configuration.`,
	Example: `  # Show resolved configuration
  mcpfed config

  # Where is the config file?
  mcpfed config path

See Also: mcpfed doctor`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigShowWithWriter(cmd.OutOrStdout(), configFormat)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigShowWithWriter(cmd.OutOrStdout(), configFormat)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigPathWithWriter(cmd.OutOrStdout())
	},
}

func runConfigShowWithWriter(w io.Writer, format string) error {
	f, err := parseFormatFlag(format)
	if err != nil {
		return err
	}
	if f == cli.FormatText {
		f = cli.FormatYAML
	}

	env, err := flags.Env()
	if err != nil {
		return err
	}

	return cli.Render(w, f, env.Config, nil)
}

func runConfigPathWithWriter(w io.Writer) error {
	if used := config.FileUsed(); used != "" {
		fmt.Fprintln(w, used)
		return nil
	}
	fmt.Fprintf(w, "%s %s\n", filepath.Join(paths.ConfigDir(), "config.yaml"), dimColor.Sprint("(not created; defaults in use)"))
	return nil
}
