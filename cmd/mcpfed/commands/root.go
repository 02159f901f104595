// Package commands implements the CLI commands for mcpfed.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpfed/cmd"
	"github.com/thoreinstein/mcpfed/cmd/mcpfed/commands/backup"
	"github.com/thoreinstein/mcpfed/cmd/mcpfed/commands/flags"
	"github.com/thoreinstein/mcpfed/internal/cli"
	"github.com/thoreinstein/mcpfed/internal/config"
	"github.com/thoreinstein/mcpfed/internal/errors"
	"github.com/thoreinstein/mcpfed/internal/logging"
)

// configFile holds the value of the --config flag.
var configFile string

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ./config.yaml or <xdg config>/mcpfed/config.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("mcpfed version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(backup.Cmd)
}

func initConfig() {
	config.Init()
	cfg, err := config.Load(configFile)
	if err != nil {
		flags.SetEnv(nil, err)
		return
	}
	flags.SetEnv(cli.NewEnv(cfg), nil)
}

var rootCmd = &cobra.Command{
	Use:   "mcpfed",
	Short: "Install and remove MCP servers in the Claude Desktop configuration",
	Long: `mcpfed installs a fixed catalog of MCP servers into the Claude Desktop
configuration file without disturbing servers you configured yourself.

Every install records which entries mcpfed added and which were already
there. Uninstall removes exactly what install added, nothing more. The
configuration file is backed up before every change.`,
	Example: `  # Preview what install would change
  mcpfed plan

  # Install the catalog
  mcpfed install

  # See which servers mcpfed manages
  mcpfed status

  # Remove what mcpfed installed
  mcpfed uninstall

  See Also: mcpfed doctor, mcpfed backup`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupLogging(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("cannot use --quiet and --verbose together"), "")
	}

	format, err := logging.ParseFormat(logFormat)
	if err != nil {
		return errors.NewUserError(err, "Use --log-format text or --log-format json")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("MCPFED_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	cfg := logging.Config{
		Level:  level,
		Format: format,
		Output: cmd.ErrOrStderr(),
	}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		cfg.File = f
	}

	logger := logging.New(cfg)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// Execute runs the root command and returns the process exit code.
// An interrupt cancels the command's context; install and uninstall stop
// before their next write.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return exitCode(rootCmd.ExecuteContext(ctx), os.Stderr)
}

// exitCode reports err on w and maps it to an exit code.
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return errors.ExitSuccess
	}

	exitErr := errors.Classify(err)
	if exitErr.Err != nil {
		fmt.Fprintln(w, errorColor.Sprint("Error: ")+exitErr.Err.Error())
		if exitErr.Suggestion != "" {
			fmt.Fprintln(w, hintColor.Sprint("Hint: ")+exitErr.Suggestion)
		}
	}
	return exitErr.Code
}
