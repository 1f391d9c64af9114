package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"textcut/internal/project"
)

func newSettingsCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings <project>",
		Short: "Show or change the project's silence settings",
		Long: `Without flags, prints the current settings. With any of --threshold,
--buffer or --min-silence, validates and applies the change, bumping the
settings revision. The stored silence list is never re-analyzed; the buffer
takes effect at the next export.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed("threshold") ||
				cmd.Flags().Changed("buffer") ||
				cmd.Flags().Changed("min-silence")

			if !changed {
				p, _, err := loadProject(args[0])
				if err != nil {
					return err
				}
				printSettings(cmd, p)
				return nil
			}

			return app.withProject(args[0], func(p *project.Project) error {
				threshold := p.Settings.ThresholdDB
				buffer := p.Settings.BufferSec
				minSilence := p.Settings.MinSilenceSec
				if cmd.Flags().Changed("threshold") {
					threshold, _ = cmd.Flags().GetFloat64("threshold")
				}
				if cmd.Flags().Changed("buffer") {
					buffer, _ = cmd.Flags().GetFloat64("buffer")
				}
				if cmd.Flags().Changed("min-silence") {
					minSilence, _ = cmd.Flags().GetFloat64("min-silence")
				}
				if err := p.Settings.Update(threshold, buffer, minSilence); err != nil {
					return err
				}
				printSettings(cmd, p)
				return nil
			})
		},
	}
	cmd.Flags().Float64("threshold", 0, "Silence threshold in dBFS [-120, 0]")
	cmd.Flags().Float64("buffer", 0, "Buffer kept on each side of a cut silence, seconds")
	cmd.Flags().Float64("min-silence", 0, "Minimum duration for a long silence, seconds")
	return cmd
}

func printSettings(cmd *cobra.Command, p *project.Project) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "threshold:   %.1f dBFS\n", p.Settings.ThresholdDB)
	fmt.Fprintf(out, "buffer:      %.3f s\n", p.Settings.BufferSec)
	fmt.Fprintf(out, "min-silence: %.3f s\n", p.Settings.MinSilenceSec)
	fmt.Fprintf(out, "revision:    %d\n", p.Settings.Revision)
}
