package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpfed/cmd/mcpfed/commands/flags"
	"github.com/thoreinstein/mcpfed/internal/cli"
)

var statusFormat string

func init() {
	addFormatFlag(statusCmd, &statusFormat)
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which catalog servers are configured and who added them",
	Long: `Show every catalog server with its provenance:

  ours          added by mcpfed; uninstall removes it
  pre-existing  configured before mcpfed ran; never removed
  untracked     configured, but not recorded by mcpfed
  missing       recorded by mcpfed, but gone from the configuration
  absent        not configured`,
	Example: `  mcpfed status
  mcpfed status --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStatusWithWriter(cmd.OutOrStdout(), statusFormat)
	},
}

type statusView struct {
	ConfigPath   string                `json:"configPath" yaml:"configPath" toml:"configPath"`
	ConfigExists bool                  `json:"configExists" yaml:"configExists" toml:"configExists"`
	ManifestPath string                `json:"manifestPath" yaml:"manifestPath" toml:"manifestPath"`
	InstalledAt  *time.Time            `json:"installedAt,omitempty" yaml:"installedAt,omitempty" toml:"installedAt,omitempty"`
	UpdatedAt    *time.Time            `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty" toml:"updatedAt,omitempty"`
	Interrupted  bool                  `json:"interrupted" yaml:"interrupted" toml:"interrupted"`
	Components   []cli.ComponentStatus `json:"components" yaml:"components" toml:"components"`
}

func runStatusWithWriter(w io.Writer, format string) error {
	f, err := parseFormatFlag(format)
	if err != nil {
		return err
	}

	env, err := flags.Env()
	if err != nil {
		return err
	}

	doc, existed, err := env.Host.ReadOrEmpty()
	if err != nil {
		return err
	}
	rec, err := env.Manifest.Load()
	if err != nil {
		return err
	}

	view := statusView{
		ConfigPath:   env.Host.Path(),
		ConfigExists: existed,
		ManifestPath: env.Manifest.Path(),
		Components:   cli.Statuses(env.Catalog, doc.Names(), rec),
	}
	if rec != nil {
		installedAt := rec.InstalledAt
		view.InstalledAt = &installedAt
		if !rec.UpdatedAt.IsZero() {
			updatedAt := rec.UpdatedAt
			view.UpdatedAt = &updatedAt
		}
		view.Interrupted = rec.Pending.Len() > 0
	}

	return cli.Render(w, f, view, func(w io.Writer) error {
		printStatusText(w, view)
		return nil
	})
}

func printStatusText(w io.Writer, v statusView) {
	fmt.Fprintf(w, "%s %s", headerColor.Sprint("Config:"), v.ConfigPath)
	if !v.ConfigExists {
		fmt.Fprint(w, dimColor.Sprint(" (does not exist)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s ", headerColor.Sprint("Manifest:"))
	if v.InstalledAt == nil {
		fmt.Fprintln(w, dimColor.Sprint("none (nothing installed)"))
	} else {
		fmt.Fprintf(w, "installed %s", v.InstalledAt.Local().Format("2006-01-02 15:04"))
		if v.UpdatedAt != nil {
			fmt.Fprintf(w, ", updated %s", v.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		fmt.Fprintln(w)
	}
	if v.Interrupted {
		fmt.Fprintf(w, "%s a previous install was interrupted; run mcpfed install\n", warnColor.Sprint("!"))
	}
	fmt.Fprintln(w)

	counts := map[cli.Provenance]int{}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tPROVENANCE")
	for _, c := range v.Components {
		counts[c.Provenance]++
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.Kind, provenanceLabel(c.Provenance))
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%d ours, %d pre-existing, %d untracked, %d missing, %d absent\n",
		counts[cli.ProvenanceOurs], counts[cli.ProvenancePreExisting], counts[cli.ProvenanceUntracked],
		counts[cli.ProvenanceMissing], counts[cli.ProvenanceAbsent])
}

func provenanceLabel(p cli.Provenance) string {
	switch p {
	case cli.ProvenanceOurs:
		return okColor.Sprint(p)
	case cli.ProvenanceMissing:
		return warnColor.Sprint(p)
	case cli.ProvenanceAbsent:
		return dimColor.Sprint(p)
	default:
		return string(p)
	}
}
