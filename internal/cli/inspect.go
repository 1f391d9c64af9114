package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInspectCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <project>",
		Short: "Show the timeline and edit state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fullIDs, _ := cmd.Flags().GetBool("ids")

			p, _, err := loadProject(args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(p.Timeline.Segments))
			for i, s := range p.Timeline.Segments {
				id := shortID(s.ID)
				if fullIDs {
					id = s.ID
				}
				sp := s.Span()
				kind, detail := "silence", ""
				if s.IsWord() {
					kind = "word"
					detail = s.Word.Text
				} else {
					detail = string(s.Silence.Kind)
				}
				flags := ""
				if s.Deleted {
					flags += "D"
				}
				if s.Filler {
					flags += "F"
				}
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					id,
					kind,
					fmt.Sprintf("%.3f", sp.Start),
					fmt.Sprintf("%.3f", sp.End),
					fmt.Sprintf("%.3f", sp.Duration()),
					detail,
					flags,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"#", "ID", "TYPE", "START", "END", "DUR", "TEXT", "FLAGS"}, rows))

			stats := p.Stats()
			fmt.Fprintf(out, "%s  %.3fs  %d segments (%d words, %d silences)\n",
				p.Media.Path, p.Timeline.Duration, stats.Segments, stats.Words, stats.Silences)
			fmt.Fprintf(out, "deleted %d, fillers %d, time saved %.3fs\n",
				stats.Deleted, stats.Fillers, stats.TimeSaved)
			fmt.Fprintf(out, "undo available: %v, redo available: %v\n",
				p.History.CanUndo(), p.History.CanRedo())
			return nil
		},
	}
	cmd.Flags().Bool("ids", false, "Print full segment ids")
	return cmd
}
