// Package editor launches the user's preferred text editor.
package editor

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/mcpfed/internal/errors"
)

// Open launches the user's editor on path and waits for it to exit.
// The editor inherits the terminal.
func Open(ctx context.Context, path string) error {
	argv := strings.Fields(detectEditor())
	if len(argv) == 0 {
		return errors.New("no editor configured")
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", argv[0])
	}
	return nil
}

// detectEditor returns the editor command line to use.
// Fallback chain: $EDITOR, $VISUAL, nano, vi. The value may carry
// arguments, as in "code --wait".
func detectEditor() string {
	if editor := strings.TrimSpace(os.Getenv("EDITOR")); editor != "" {
		return editor
	}

	if visual := strings.TrimSpace(os.Getenv("VISUAL")); visual != "" {
		return visual
	}

	// nano is easier for beginners
	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}

	return "vi"
}
