package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpfed/cmd/mcpfed/commands/flags"
	"github.com/thoreinstein/mcpfed/internal/catalog"
	"github.com/thoreinstein/mcpfed/internal/cli"
	"github.com/thoreinstein/mcpfed/internal/logging"
)

var (
	catalogFormat string
	catalogLong   bool
)

func init() {
	addFormatFlag(catalogListCmd, &catalogFormat)
	catalogListCmd.Flags().BoolVarP(&catalogLong, "long", "l", false,
		"show each server's launch command and environment")
	catalogCmd.AddCommand(catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the servers mcpfed installs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog servers",
	Long: `List the servers install adds, after removing names excluded in the
configuration. Environment values that look like secrets are masked.`,
	Example: `  mcpfed catalog list
  mcpfed catalog list --long
  mcpfed catalog list --format toml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCatalogListWithWriter(cmd.OutOrStdout(), catalogFormat, catalogLong)
	},
}

type catalogItem struct {
	Name        string            `json:"name" yaml:"name" toml:"name"`
	Kind        catalog.Kind      `json:"kind" yaml:"kind" toml:"kind"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Command     string            `json:"command" yaml:"command" toml:"command"`
	Args        []string          `json:"args" yaml:"args" toml:"args"`
	Env         map[string]string `json:"env,omitempty" yaml:"env,omitempty" toml:"env,omitempty"`
	Cwd         string            `json:"cwd,omitempty" yaml:"cwd,omitempty" toml:"cwd,omitempty"`
}

type catalogView struct {
	Servers []catalogItem `json:"servers" yaml:"servers" toml:"servers"`
}

func runCatalogListWithWriter(w io.Writer, format string, long bool) error {
	f, err := parseFormatFlag(format)
	if err != nil {
		return err
	}

	env, err := flags.Env()
	if err != nil {
		return err
	}

	var view catalogView
	for _, e := range env.Catalog.Entries() {
		view.Servers = append(view.Servers, catalogItem{
			Name:        e.Name,
			Kind:        e.Kind,
			Description: e.Description,
			Command:     e.Launch.Command,
			Args:        orEmpty(e.Launch.Args),
			Env:         logging.MaskEnv(e.Launch.Env),
			Cwd:         e.Launch.Cwd,
		})
	}
	if view.Servers == nil {
		view.Servers = []catalogItem{}
	}

	return cli.Render(w, f, view, func(w io.Writer) error {
		printCatalogText(w, view, long)
		return nil
	})
}

func printCatalogText(w io.Writer, v catalogView, long bool) {
	if len(v.Servers) == 0 {
		fmt.Fprintln(w, "The catalog is empty (every server is excluded)")
		return
	}

	if !long {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tKIND\tDESCRIPTION")
		for _, s := range v.Servers {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, s.Kind, s.Description)
		}
		tw.Flush()
		return
	}

	for i, s := range v.Servers {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", headerColor.Sprint(s.Name), dimColor.Sprintf("(%s)", s.Kind))
		if s.Description != "" {
			fmt.Fprintf(w, "  %s\n", s.Description)
		}
		fmt.Fprintf(w, "  command: %s %s\n", s.Command, strings.Join(s.Args, " "))
		if s.Cwd != "" {
			fmt.Fprintf(w, "  cwd:     %s\n", s.Cwd)
		}
		for _, k := range slices.Sorted(maps.Keys(s.Env)) {
			fmt.Fprintf(w, "  env:     %s=%s\n", k, s.Env[k])
		}
	}
}
