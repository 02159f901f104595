package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpfed/cmd/mcpfed/commands/flags"
	"github.com/thoreinstein/mcpfed/internal/editor"
	"github.com/thoreinstein/mcpfed/internal/errors"
)

// openEditor launches the editor. Tests replace it.
var openEditor = editor.Open

func init() {
	rootCmd.AddCommand(editCmd)
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the Claude Desktop configuration in your editor",
	Long: `Open the Claude Desktop configuration file in $EDITOR (or $VISUAL),
typically to replace the YOUR_... placeholder credentials install left.

The file is checked after the editor exits. If it no longer parses, the
previous version can be brought back with "mcpfed backup restore".`,
	Example: `  mcpfed edit
  EDITOR="code --wait" mcpfed edit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runEditWithWriter(cmd.Context(), cmd.OutOrStdout())
	},
}

func runEditWithWriter(ctx context.Context, w io.Writer) error {
	env, err := flags.Env()
	if err != nil {
		return err
	}

	path := env.Host.Path()
	if _, existed, err := env.Host.ReadOrEmpty(); err == nil && !existed {
		return errors.NewUserError(errors.Newf("%s does not exist", path), "Run: mcpfed install")
	}

	fmt.Fprintf(w, "Location: %s\n", path)
	if err := openEditor(ctx, path); err != nil {
		return errors.NewUserError(err, "Set EDITOR to your preferred editor")
	}

	if _, err := env.Host.Read(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s parses cleanly\n", okColor.Sprint("✓"), path)
	return nil
}
