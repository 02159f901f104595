// Package prompt provides interactive CLI prompts for user input.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/thoreinstein/mcpfed/internal/backup"
	"github.com/thoreinstein/mcpfed/internal/errors"
)

// Sentinel errors for prompts.
var (
	ErrNoSnapshots        = errors.New("no snapshots to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Prompter reads answers from a reader and writes questions to a writer.
type Prompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// New creates a Prompter using stdin and stderr so prompts never mix with
// command output.
func New() *Prompter {
	return NewWithIO(os.Stdin, os.Stderr)
}

// NewWithIO creates a Prompter with custom reader and writer for testing.
func NewWithIO(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// SelectSnapshot prompts the user to choose a snapshot from a numbered list.
// snaps are expected newest first; an empty answer picks the newest.
//
// Returns:
//   - ErrNoSnapshots if the list is empty
//   - The snapshot if only one exists (auto-selects without prompting)
//   - ErrInvalidSelection if the selection is out of range
//   - ErrSelectionCancelled if input is EOF (e.g., Ctrl+D)
func (p *Prompter) SelectSnapshot(snaps []backup.Snapshot) (*backup.Snapshot, error) {
	if len(snaps) == 0 {
		return nil, ErrNoSnapshots
	}

	if len(snaps) == 1 {
		return &snaps[0], nil
	}

	fmt.Fprintln(p.writer, "Available snapshots:")
	for i, s := range snaps {
		fmt.Fprintf(p.writer, "  [%d] %s  %s  %s\n", i+1, s.ID,
			s.CreatedAt.Local().Format("2006-01-02 15:04:05"), s.Reason)
	}
	fmt.Fprintf(p.writer, "Select [1]: ")

	input, err := p.readLine()
	if err != nil {
		return nil, err
	}

	// Default to newest
	if input == "" {
		return &snaps[0], nil
	}

	selection, err := strconv.Atoi(input)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidSelection, "%q is not a number", input)
	}

	// Validate range (1-indexed)
	if selection < 1 || selection > len(snaps) {
		return nil, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", selection, len(snaps))
	}

	return &snaps[selection-1], nil
}

func (p *Prompter) readLine() (string, error) {
	input, err := p.reader.ReadString('\n')
	if err != nil {
		// A final line without a newline still counts
		if errors.Is(err, io.EOF) && input != "" {
			return strings.TrimSpace(input), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrSelectionCancelled
		}
		return "", errors.Wrap(err, "reading input")
	}
	return strings.TrimSpace(input), nil
}
