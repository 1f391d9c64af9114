package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"textcut/internal/history"
	"textcut/internal/segment"
	"textcut/internal/timeline"
)

func testTimeline(t *testing.T) *timeline.Timeline {
	t.Helper()
	words := []segment.Word{
		{Span: segment.Span{Start: 0, End: 0.5}, Text: "Hello"},
		{Span: segment.Span{Start: 1.3, End: 1.8}, Text: "world"},
	}
	silences := []segment.Silence{
		{Span: segment.Span{Start: 0.5, End: 1.3}, Kind: segment.KindLong},
	}
	tl, err := timeline.Build(words, silences, 1.8)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tl
}

func testProject(t *testing.T) *Project {
	t.Helper()
	tl := testTimeline(t)
	media := segment.MediaRef{Path: "/media/talk.mp4", Duration: 1.8, FPS: 25, Width: 1920, Height: 1080}
	p, err := New("talk", media, tl, segment.DefaultSettings())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestSnapshotPath(t *testing.T) {
	t.Parallel()

	if got := SnapshotPath("/media/talk.mp4"); got != "/media/talk.cut.json" {
		t.Fatalf("SnapshotPath = %q", got)
	}
	if got := SnapshotPath("clip"); got != "clip.cut.json" {
		t.Fatalf("SnapshotPath without ext = %q", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	p := testProject(t)

	// Leave some edit state behind: one delete applied, one undone.
	silenceID := p.Timeline.Segments[1].ID
	wordID := p.Timeline.Segments[0].ID
	if err := p.History.Apply(p.Timeline, history.Delete(silenceID)); err != nil {
		t.Fatal(err)
	}
	if err := p.History.Apply(p.Timeline, history.Delete(wordID)); err != nil {
		t.Fatal(err)
	}
	if _, err := p.History.Undo(p.Timeline); err != nil {
		t.Fatal(err)
	}
	if err := p.Settings.Update(-35, 0.1, 0.4); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "talk.cut.json")
	if err := p.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ID != p.ID || got.Name != "talk" {
		t.Fatalf("identity lost: %+v", got)
	}
	if got.Media != p.Media {
		t.Fatalf("media lost: %+v", got.Media)
	}
	if got.Settings.Revision != 2 || got.Settings.BufferSec != 0.1 {
		t.Fatalf("settings lost: %+v", got.Settings)
	}

	// Same ids, same flags.
	if len(got.Timeline.Segments) != len(p.Timeline.Segments) {
		t.Fatalf("segment count: %d", len(got.Timeline.Segments))
	}
	for i := range p.Timeline.Segments {
		want, have := p.Timeline.Segments[i], got.Timeline.Segments[i]
		if want.ID != have.ID || want.Deleted != have.Deleted || want.Filler != have.Filler {
			t.Fatalf("segment %d: %+v vs %+v", i, have, want)
		}
	}

	// History survives: one undo slot and one redo slot, still functional.
	if !got.History.CanUndo() || !got.History.CanRedo() {
		t.Fatalf("history availability lost")
	}
	if ok, err := got.History.Redo(got.Timeline); err != nil || !ok {
		t.Fatalf("redo after load: %v %v", ok, err)
	}
	if !got.Timeline.Lookup(wordID).Deleted {
		t.Fatal("redo after load did not re-delete the word")
	}
}

func TestLoadRejectsCorruptSnapshot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.cut.json")

	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected decode error")
	}

	if err := os.WriteFile(path, []byte(`{"version":99}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "version") {
		t.Fatalf("expected version error, got %v", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.cut.json")); err == nil {
		t.Fatal("expected error for missing snapshot")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	p := testProject(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "talk.cut.json")
	if err := p.Save(path); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "talk.cut.json" {
		t.Fatalf("unexpected directory contents: %v", entries)
	}
}

func TestLockExcludesSecondWriter(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "talk.cut.json")
	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := Acquire(path); err == nil {
		t.Fatal("second acquire should fail while lock is held")
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	l2, err := Acquire(path)
	if err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
	if err := l2.Release(); err != nil {
		t.Fatal(err)
	}
}

func TestNewRejectsInvalidMedia(t *testing.T) {
	t.Parallel()

	tl := testTimeline(t)
	_, err := New("x", segment.MediaRef{}, tl, segment.DefaultSettings())
	if err == nil {
		t.Fatal("expected media validation error")
	}
}
