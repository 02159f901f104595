package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpfed/cmd/mcpfed/commands/flags"
	"github.com/thoreinstein/mcpfed/internal/cli"
	"github.com/thoreinstein/mcpfed/internal/doctor"
	"github.com/thoreinstein/mcpfed/internal/errors"
)

var (
	doctorJSON    bool
	doctorQuiet   bool
	doctorVerbose bool
	doctorFix     bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorQuiet, "quiet", false,
		"suppress output, exit code only")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "verbose", false,
		"show detailed check-by-check output")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"repair file permission problems")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration issues",
	Long: `Check the Claude Desktop configuration, the install manifest and the
backup directory, and report where they disagree.

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --verbose   Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	Args:    cobra.NoArgs,
	PreRunE: validateDoctorFlags,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDoctorWithWriter(cmd.OutOrStdout())
	},
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	count := 0
	for _, set := range []bool{doctorJSON, doctorQuiet, doctorVerbose} {
		if set {
			count++
		}
	}

	if count > 1 {
		return errors.NewUserError(errors.New("flags --json, --quiet, and --verbose are mutually exclusive"), "")
	}

	return nil
}

// newDoctorRunner registers every check against env.
func newDoctorRunner(env *cli.Env) *doctor.Runner {
	state := doctor.LoadState(env.Host, env.Manifest, env.Catalog)

	runner := doctor.NewRunner()
	runner.AddCheck(doctor.NewHostConfigCheck(state))
	runner.AddCheck(doctor.NewManifestCheck(state))
	runner.AddCheck(doctor.NewConsistencyCheck(state))
	runner.AddCheck(doctor.NewPlaceholderCheck(state))
	runner.AddCheck(doctor.NewBackupCheck(env.Backups))
	runner.AddCheck(doctor.NewPathPermissionCheck(
		doctor.Target{Label: "host config", Path: env.Host.Path(), Type: doctor.TargetFile},
		doctor.Target{Label: "manifest", Path: env.Manifest.Path(), Type: doctor.TargetFile, MaxPerm: 0o600},
		doctor.Target{Label: "data dir", Path: env.Config.DataDir, Type: doctor.TargetDirectory},
		doctor.Target{Label: "backup dir", Path: env.Backups.Dir(), Type: doctor.TargetDirectory},
	))
	return runner
}

func runDoctorWithWriter(w io.Writer) error {
	env, err := flags.Env()
	if err != nil {
		return err
	}

	runner := newDoctorRunner(env)
	report := runner.Run()

	if doctorFix {
		fixed := applyFixes(w, runner.Fixers())
		if fixed > 0 {
			// Re-run so the report and exit code reflect the repaired state
			runner = newDoctorRunner(env)
			report = runner.Run()
		}
	}

	if err := outputDoctorReport(w, report); err != nil {
		return err
	}

	if code := report.ExitCode(); code != 0 {
		return errors.NewExitError(nil, code)
	}
	return nil
}

// applyFixes runs every fixer and returns how many issues were repaired.
func applyFixes(w io.Writer, fixers []doctor.Fixer) int {
	fixed := 0
	for _, f := range fixers {
		for _, r := range f.Fix() {
			if r.Fixed {
				fixed++
				if !doctorQuiet && !doctorJSON {
					fmt.Fprintf(w, "%s fixed %s: %s\n", okColor.Sprint("✓"), r.Path, r.Description)
				}
				continue
			}
			if !doctorQuiet && !doctorJSON {
				fmt.Fprintf(w, "%s could not fix %s: %s\n", errorColor.Sprint("✗"), r.Path, r.Description)
			}
		}
	}
	return fixed
}

func outputDoctorReport(w io.Writer, report *doctor.DoctorReport) error {
	if doctorQuiet {
		return nil
	}

	if doctorJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(report), "encoding JSON")
	}

	outputDoctorText(w, report)
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.DoctorReport) {
	// In normal mode, show only errors and warnings
	showAll := doctorVerbose

	hasOutput := false
	for _, result := range report.Results {
		problem := result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning
		if !showAll && !problem {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)

		if result.FixHint != "" && problem {
			fmt.Fprintf(w, "  %s %s\n", hintColor.Sprint("hint:"), result.FixHint)
		}
	}

	if hasOutput || showAll {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return okColor.Sprint("✓")
	case doctor.SeverityInfo:
		return hintColor.Sprint("ℹ")
	case doctor.SeverityWarning:
		return warnColor.Sprint("⚠")
	case doctor.SeverityError:
		return errorColor.Sprint("✗")
	default:
		return "?"
	}
}
