package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpfed/internal/cli"
	"github.com/thoreinstein/mcpfed/internal/errors"
)

// Terminal colors. fatih/color disables them when stdout is not a TTY or
// NO_COLOR is set.
var (
	okColor     = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed, color.Bold)
	hintColor   = color.New(color.FgCyan)
	headerColor = color.New(color.Bold)
	dimColor    = color.New(color.FgHiBlack)
)

// addFormatFlag registers --format on c, storing into target.
func addFormatFlag(c *cobra.Command, target *string) {
	c.Flags().StringVarP(target, "format", "o", string(cli.FormatText),
		"output format: text, json, yaml, toml")
}

// parseFormatFlag converts a --format value into a user error when invalid.
func parseFormatFlag(s string) (cli.Format, error) {
	f, err := cli.ParseFormat(s)
	if err != nil {
		return "", errors.NewUserError(err, "")
	}
	return f, nil
}

// printNames prints a labelled, comma-separated list, or nothing when empty.
func printNames(w io.Writer, label string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s %s\n", dimColor.Sprintf("%-16s", label+":"), joinNames(names))
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}

// orEmpty returns s, or a non-nil empty slice so structured output prints [].
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
