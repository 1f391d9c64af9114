package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"textcut/internal/catalog"
	"textcut/internal/config"
	"textcut/internal/logging"
	"textcut/internal/project"
	"textcut/internal/timeline"
)

// appState carries config and logger from the root command into subcommands.
type appState struct {
	cfg *config.Config
	log *slog.Logger
}

func (a *appState) init(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.Logging.Format = format
	}
	log, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// resolveSnapshot accepts either a snapshot path or the media path it sits
// next to.
func resolveSnapshot(arg string) string {
	if strings.HasSuffix(arg, ".cut.json") {
		return arg
	}
	return project.SnapshotPath(arg)
}

// withProject runs one mutating command under the single-writer discipline.
func (a *appState) withProject(arg string, fn func(p *project.Project) error) error {
	snap := resolveSnapshot(arg)
	lock, err := project.Acquire(snap)
	if err != nil {
		return err
	}
	defer lock.Release()

	p, err := project.Load(snap)
	if err != nil {
		return err
	}
	if err := fn(p); err != nil {
		return err
	}
	if err := p.Save(snap); err != nil {
		return err
	}
	a.syncCatalog(p, snap)
	return nil
}

// loadProject opens a project read-only, without the writer lock.
func loadProject(arg string) (*project.Project, string, error) {
	snap := resolveSnapshot(arg)
	p, err := project.Load(snap)
	return p, snap, err
}

// syncCatalog refreshes the project registry. Catalog trouble never fails the
// edit that already saved.
func (a *appState) syncCatalog(p *project.Project, snap string) {
	store, err := catalog.Open(a.cfg.Catalog.Path)
	if err != nil {
		a.log.Warn("catalog unavailable", "error", err)
		return
	}
	defer store.Close()

	stats := p.Stats()
	err = store.Upsert(context.Background(), catalog.Entry{
		ProjectID:    p.ID,
		Name:         p.Name,
		MediaPath:    p.Media.Path,
		SnapshotPath: snap,
		Duration:     p.Timeline.Duration,
		Segments:     stats.Segments,
		Deleted:      stats.Deleted,
		TimeSaved:    stats.TimeSaved,
	})
	if err != nil {
		a.log.Warn("catalog update failed", "error", err)
	}
}

func (a *appState) recordExport(projectID, format, outputPath string, ranges int) {
	store, err := catalog.Open(a.cfg.Catalog.Path)
	if err != nil {
		a.log.Warn("catalog unavailable", "error", err)
		return
	}
	defer store.Close()
	err = store.RecordExport(context.Background(), catalog.ExportRun{
		ProjectID:  projectID,
		Format:     format,
		OutputPath: outputPath,
		Ranges:     ranges,
	})
	if err != nil {
		a.log.Warn("export journal failed", "error", err)
	}
}

// resolveIDs maps id arguments to full segment ids, accepting unambiguous
// prefixes so users can work from the inspect table's short ids.
func resolveIDs(tl *timeline.Timeline, args []string) ([]string, error) {
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		if tl.Lookup(arg) != nil {
			ids = append(ids, arg)
			continue
		}
		var matches []string
		for _, s := range tl.Segments {
			if strings.HasPrefix(s.ID, arg) {
				matches = append(matches, s.ID)
			}
		}
		switch len(matches) {
		case 1:
			ids = append(ids, matches[0])
		case 0:
			return nil, fmt.Errorf("no segment matches id %q", arg)
		default:
			return nil, fmt.Errorf("id %q is ambiguous (%d matches)", arg, len(matches))
		}
	}
	return ids, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func renderTable(headers []string, rows [][]string) string {
	tw := table.NewWriter()
	if isatty.IsTerminal(os.Stdout.Fd()) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, c := range row {
			r[i] = c
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}
