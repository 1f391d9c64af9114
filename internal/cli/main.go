// Package cli wires the engine into the textcut command tree. Every mutating
// subcommand runs the same loop: lock the snapshot, load, validate and apply
// one command, save atomically, sync the catalog.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	app := &appState{}
	root := &cobra.Command{
		Use:          "textcut",
		Short:        "Edit video by editing its transcript",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd)
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.PersistentFlags().String("config", "", "Config file path")
	root.PersistentFlags().String("log-level", "", "Override log level (debug|info|warn|error)")
	root.PersistentFlags().String("log-format", "", "Override log format (console|json)")

	root.AddCommand(
		newImportCmd(app),
		newInspectCmd(app),
		newDeleteCmd(app),
		newRestoreCmd(app),
		newAutocutCmd(app),
		newFillersCmd(app),
		newUndoCmd(app),
		newRedoCmd(app),
		newSettingsCmd(app),
		newExportCmd(app),
		newProjectsCmd(app),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
