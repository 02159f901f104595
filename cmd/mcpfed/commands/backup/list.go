package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpfed/cmd/mcpfed/commands/flags"
	"github.com/thoreinstein/mcpfed/internal/backup"
	"github.com/thoreinstein/mcpfed/internal/errors"
)

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	Cmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available backups",
	Long: `List all snapshots of the configuration file, most recent first.

A snapshot marked "absent" records that the file did not exist; restoring
it removes the file.`,
	Example: `  # List all backups
  mcpfed backup list

  # Output as JSON
  mcpfed backup list --json

  See Also:
    mcpfed backup restore - Restore from a backup`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runListWithWriter(cmd.OutOrStdout())
	},
}

// infoOutput represents a single backup in JSON output.
type infoOutput struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Reason       string    `json:"reason"`
	OriginalPath string    `json:"original_path"`
	Existed      bool      `json:"existed"`
	Size         int64     `json:"size"`
	ToolVersion  string    `json:"tool_version"`
}

func runListWithWriter(w io.Writer) error {
	env, err := flags.Env()
	if err != nil {
		return err
	}

	snaps, err := env.Backups.List()
	if err != nil && !errors.Is(err, backup.ErrNoBackupsFound) {
		return errors.Wrap(err, "listing backups")
	}

	if listJSON {
		return outputListJSON(w, snaps)
	}
	return outputListTabular(w, snaps, env.Backups.Dir())
}

func outputListJSON(w io.Writer, snaps []backup.Snapshot) error {
	output := make([]infoOutput, len(snaps))
	for i, s := range snaps {
		output[i] = infoOutput{
			ID:           s.ID,
			CreatedAt:    s.CreatedAt,
			Reason:       s.Reason,
			OriginalPath: s.OriginalPath,
			Existed:      s.Existed,
			Size:         s.Size,
			ToolVersion:  s.ToolVersion,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(output), "encoding output")
}

func outputListTabular(w io.Writer, snaps []backup.Snapshot, dir string) error {
	if len(snaps) == 0 {
		fmt.Fprintln(w, "No backups available")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Backups are created automatically before mcpfed changes the configuration.")
		fmt.Fprintf(w, "They are stored in %s\n", dir)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		boldColor.Sprint("ID"), boldColor.Sprint("CREATED"), boldColor.Sprint("REASON"),
		boldColor.Sprint("SIZE"), boldColor.Sprint("VERSION"))

	for _, s := range snaps {
		size := fmt.Sprintf("%d B", s.Size)
		if !s.Existed {
			size = dimColor.Sprint("absent")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			idColor.Sprint(s.ID),
			s.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			s.Reason,
			size,
			s.ToolVersion)
	}
	return errors.Wrap(tw.Flush(), "writing table")
}
