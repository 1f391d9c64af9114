// Package catalog keeps a SQLite registry of known projects and their export
// runs, so `textcut projects` can list everything edited on this machine
// without scanning the filesystem for snapshots.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Entry is one cataloged project.
type Entry struct {
	ProjectID    string
	Name         string
	MediaPath    string
	SnapshotPath string
	Duration     float64
	Segments     int
	Deleted      int
	TimeSaved    float64
	UpdatedAt    time.Time
}

// ExportRun records one completed export.
type ExportRun struct {
	ID         int64
	ProjectID  string
	Format     string
	OutputPath string
	Ranges     int
	CreatedAt  time.Time
}

// Open initializes or connects to the catalog database at path, creating the
// parent directory when needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create catalog dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS projects (
    project_id    TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    media_path    TEXT NOT NULL,
    snapshot_path TEXT NOT NULL,
    duration      REAL NOT NULL,
    segments      INTEGER NOT NULL,
    deleted       INTEGER NOT NULL,
    time_saved    REAL NOT NULL,
    updated_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS export_runs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id  TEXT NOT NULL REFERENCES projects(project_id) ON DELETE CASCADE,
    format      TEXT NOT NULL,
    output_path TEXT NOT NULL,
    ranges      INTEGER NOT NULL,
    created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_export_runs_project ON export_runs(project_id);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init catalog schema: %w", err)
	}
	return nil
}

// Upsert inserts or refreshes a project row after a mutating command.
func (s *Store) Upsert(ctx context.Context, e Entry) error {
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (
            project_id, name, media_path, snapshot_path,
            duration, segments, deleted, time_saved, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(project_id) DO UPDATE SET
            name = excluded.name,
            media_path = excluded.media_path,
            snapshot_path = excluded.snapshot_path,
            duration = excluded.duration,
            segments = excluded.segments,
            deleted = excluded.deleted,
            time_saved = excluded.time_saved,
            updated_at = excluded.updated_at`,
		e.ProjectID, e.Name, e.MediaPath, e.SnapshotPath,
		e.Duration, e.Segments, e.Deleted, e.TimeSaved,
		e.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upsert project %s: %w", e.ProjectID, err)
	}
	return nil
}

// Get returns the cataloged project, or sql.ErrNoRows wrapped.
func (s *Store) Get(ctx context.Context, projectID string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT project_id, name, media_path, snapshot_path,
            duration, segments, deleted, time_saved, updated_at
        FROM projects WHERE project_id = ?`, projectID)
	e, err := scanEntry(row)
	if err != nil {
		return Entry{}, fmt.Errorf("get project %s: %w", projectID, err)
	}
	return e, nil
}

// List returns every cataloged project, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT project_id, name, media_path, snapshot_path,
            duration, segments, deleted, time_saved, updated_at
        FROM projects ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

// RecordExport journals a completed export run.
func (s *Store) RecordExport(ctx context.Context, r ExportRun) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO export_runs (project_id, format, output_path, ranges, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		r.ProjectID, r.Format, r.OutputPath, r.Ranges,
		r.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record export for %s: %w", r.ProjectID, err)
	}
	return nil
}

// Exports returns the export runs for a project, newest first.
func (s *Store) Exports(ctx context.Context, projectID string) ([]ExportRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, format, output_path, ranges, created_at
        FROM export_runs WHERE project_id = ? ORDER BY id DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list exports for %s: %w", projectID, err)
	}
	defer rows.Close()

	var out []ExportRun
	for rows.Next() {
		var r ExportRun
		var created string
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.Format, &r.OutputPath, &r.Ranges, &created); err != nil {
			return nil, fmt.Errorf("list exports for %s: %w", projectID, err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list exports for %s: %w", projectID, err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	var updated string
	if err := row.Scan(&e.ProjectID, &e.Name, &e.MediaPath, &e.SnapshotPath,
		&e.Duration, &e.Segments, &e.Deleted, &e.TimeSaved, &updated); err != nil {
		return Entry{}, err
	}
	e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return e, nil
}
