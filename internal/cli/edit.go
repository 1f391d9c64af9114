package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"textcut/internal/filler"
	"textcut/internal/history"
	"textcut/internal/project"
)

func newDeleteCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project> <id>...",
		Short: "Mark segments as deleted",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withProject(args[0], func(p *project.Project) error {
				ids, err := resolveIDs(p.Timeline, args[1:])
				if err != nil {
					return err
				}
				if err := p.History.Apply(p.Timeline, history.Delete(ids...)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d segment(s)\n", len(ids))
				return nil
			})
		},
	}
}

func newRestoreCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <project> [<id>...]",
		Short: "Restore deleted segments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			if !all && len(args) < 2 {
				return errors.New("pass segment ids or --all")
			}
			return app.withProject(args[0], func(p *project.Project) error {
				var ids []string
				if all {
					ids = p.Timeline.DeletedIDs()
					if len(ids) == 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "nothing to restore")
						return nil
					}
				} else {
					var err error
					ids, err = resolveIDs(p.Timeline, args[1:])
					if err != nil {
						return err
					}
				}
				if err := p.History.Apply(p.Timeline, history.Restore(ids...)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "restored %d segment(s)\n", len(ids))
				return nil
			})
		},
	}
	cmd.Flags().Bool("all", false, "Restore every deleted segment")
	return cmd
}

func newAutocutCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autocut <project>",
		Short: "Delete every long silence that survives the buffer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			return app.withProject(args[0], func(p *project.Project) error {
				ids := p.Timeline.AutoCutIDs(p.Settings)
				if len(ids) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no cuttable silences")
					return nil
				}
				if dryRun {
					for _, id := range ids {
						sp := p.Timeline.Lookup(id).Span()
						fmt.Fprintf(cmd.OutOrStdout(), "%s  %.3f-%.3f\n", shortID(id), sp.Start, sp.End)
					}
					return nil
				}
				if err := p.History.Apply(p.Timeline, history.Delete(ids...)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d silence(s)\n", len(ids))
				return nil
			})
		},
	}
	cmd.Flags().Bool("dry-run", false, "List candidates without deleting")
	return cmd
}

func newFillersCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fillers <project>",
		Short: "Scan for filler words and optionally delete them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			soft, _ := cmd.Flags().GetBool("soft")
			apply, _ := cmd.Flags().GetBool("apply")

			lexWords := append([]string(nil), app.cfg.Fillers.Hard...)
			if soft {
				lexWords = append(lexWords, app.cfg.Fillers.Soft...)
			}
			lex := filler.NewLexicon(lexWords...)

			return app.withProject(args[0], func(p *project.Project) error {
				del := filler.Scan(p.Timeline, lex)
				if len(del.IDs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no fillers found")
					return nil
				}
				if !apply {
					for _, id := range del.IDs {
						s := p.Timeline.Lookup(id)
						sp := s.Span()
						fmt.Fprintf(cmd.OutOrStdout(), "%s  %.3f-%.3f  %q\n", shortID(id), sp.Start, sp.End, s.Word.Text)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%d filler(s); rerun with --apply to delete\n", len(del.IDs))
					return nil
				}
				if err := p.History.Apply(p.Timeline, del); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d filler(s)\n", len(del.IDs))
				return nil
			})
		},
	}
	cmd.Flags().Bool("soft", false, "Include the soft lexicon (like, basically, ...)")
	cmd.Flags().Bool("apply", false, "Delete the matches instead of listing them")
	return cmd
}

func newUndoCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <project>",
		Short: "Undo the most recent edit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withProject(args[0], func(p *project.Project) error {
				ok, err := p.History.Undo(p.Timeline)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "nothing to undo")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "undone")
				return nil
			})
		},
	}
}

func newRedoCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "redo <project>",
		Short: "Re-apply the most recently undone edit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withProject(args[0], func(p *project.Project) error {
				ok, err := p.History.Redo(p.Timeline)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "nothing to redo")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "redone")
				return nil
			})
		},
	}
}
