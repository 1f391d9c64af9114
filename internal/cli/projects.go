package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"textcut/internal/catalog"
)

func newProjectsCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List cataloged projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := catalog.Open(app.cfg.Catalog.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(context.Background())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no projects yet")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					shortID(e.ProjectID),
					e.Name,
					fmt.Sprintf("%.1fs", e.Duration),
					fmt.Sprintf("%d", e.Segments),
					fmt.Sprintf("%d", e.Deleted),
					fmt.Sprintf("%.1fs", e.TimeSaved),
					e.UpdatedAt.Local().Format("2006-01-02 15:04"),
					e.SnapshotPath,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "NAME", "LEN", "SEGS", "DEL", "SAVED", "UPDATED", "SNAPSHOT"}, rows))
			return nil
		},
	}
	return cmd
}
