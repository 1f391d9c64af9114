// Package project holds the aggregate root: media reference, timeline,
// silence settings and edit history, persisted as a snapshot document next to
// the media after every mutating command.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"textcut/internal/history"
	"textcut/internal/segment"
	"textcut/internal/timeline"
)

// snapshotVersion guards against loading snapshots from incompatible builds.
const snapshotVersion = 1

// Project is the aggregate the engine mutates. There is at most one live
// instance per snapshot file, enforced by the lock in this package.
type Project struct {
	ID           string
	Name         string
	Media        segment.MediaRef
	SourceFCPXML string
	Timeline     *timeline.Timeline
	Settings     segment.Settings
	History      *history.History
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// New creates a project around a freshly built timeline.
func New(name string, media segment.MediaRef, tl *timeline.Timeline, st segment.Settings) (*Project, error) {
	if err := media.Validate(); err != nil {
		return nil, fmt.Errorf("new project: %w", err)
	}
	if err := tl.Validate(); err != nil {
		return nil, fmt.Errorf("new project: %w", err)
	}
	now := time.Now().UTC()
	return &Project{
		ID:        uuid.NewString(),
		Name:      name,
		Media:     media,
		Timeline:  tl,
		Settings:  st,
		History:   history.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// SnapshotPath derives the snapshot location from the media path:
// /path/talk.mp4 -> /path/talk.cut.json.
func SnapshotPath(mediaPath string) string {
	ext := filepath.Ext(mediaPath)
	return strings.TrimSuffix(mediaPath, ext) + ".cut.json"
}

type snapshot struct {
	Version      int               `json:"version"`
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Media        segment.MediaRef  `json:"media"`
	SourceFCPXML string            `json:"source_fcpxml,omitempty"`
	Duration     float64           `json:"duration"`
	Segments     []segment.Unified `json:"segments"`
	Settings     segment.Settings  `json:"settings"`
	Undo         []history.Entry   `json:"undo"`
	Redo         []history.Entry   `json:"redo"`
}

// Save writes the snapshot atomically: a temp file in the same directory,
// fsynced, then renamed over the target. A concurrent reader sees either the
// old snapshot or the new one, never a partial write.
func (p *Project) Save(path string) error {
	undo, redo := p.History.Stacks()
	p.UpdatedAt = time.Now().UTC()
	snap := snapshot{
		Version:      snapshotVersion,
		ID:           p.ID,
		Name:         p.Name,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Media:        p.Media,
		SourceFCPXML: p.SourceFCPXML,
		Duration:     p.Timeline.Duration,
		Segments:     p.Timeline.Segments,
		Settings:     p.Settings,
		Undo:         undo,
		Redo:         redo,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".cut-*.tmp")
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot and revalidates the timeline invariants before
// handing the project back.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("snapshot %s: unsupported version %d", path, snap.Version)
	}
	tl, err := timeline.FromSegments(snap.Duration, snap.Segments)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	if err := snap.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return &Project{
		ID:           snap.ID,
		Name:         snap.Name,
		Media:        snap.Media,
		SourceFCPXML: snap.SourceFCPXML,
		Timeline:     tl,
		Settings:     snap.Settings,
		History:      history.FromStacks(snap.Undo, snap.Redo),
		CreatedAt:    snap.CreatedAt,
		UpdatedAt:    snap.UpdatedAt,
	}, nil
}

// Stats reports the edit state under the project's current settings.
func (p *Project) Stats() timeline.Stats {
	return p.Timeline.ComputeStats(p.Settings)
}
