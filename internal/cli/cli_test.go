package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"textcut/internal/config"
	"textcut/internal/logging"
	"textcut/internal/project"
	"textcut/internal/segment"
	"textcut/internal/timeline"
)

func newTestApp(t *testing.T) *appState {
	t.Helper()
	cfg := config.Default()
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "catalog.db")
	log, err := logging.New(logging.Options{Level: "error", Writer: io.Discard})
	if err != nil {
		t.Fatal(err)
	}
	return &appState{cfg: &cfg, log: log}
}

// seedProject writes a Hello/world snapshot and returns its path plus the
// silence segment's id.
func seedProject(t *testing.T) (string, string) {
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
		t.Fatal(err)
	}
	var silenceID string
	for _, s := range tl.Segments {
		if s.IsSilence() {
			silenceID = s.ID
		}
	}

	mediaPath := filepath.Join(t.TempDir(), "talk.mp4")
	media := segment.MediaRef{Path: mediaPath, Duration: 1.8, FPS: 25, Width: 1920, Height: 1080}
	p, err := project.New("talk", media, tl, segment.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	snap := project.SnapshotPath(mediaPath)
	if err := p.Save(snap); err != nil {
		t.Fatal(err)
	}
	return snap, silenceID
}

func TestResolveSnapshot(t *testing.T) {
	t.Parallel()

	if got := resolveSnapshot("/a/talk.mp4"); got != "/a/talk.cut.json" {
		t.Fatalf("media arg: %q", got)
	}
	if got := resolveSnapshot("/a/talk.cut.json"); got != "/a/talk.cut.json" {
		t.Fatalf("snapshot arg: %q", got)
	}
}

func TestResolveIDs(t *testing.T) {
	t.Parallel()

	segs := []segment.Unified{
		{ID: "aaa-1", Word: &segment.Word{Span: segment.Span{Start: 0, End: 1}, Text: "x"}},
		{ID: "aaa-2", Word: &segment.Word{Span: segment.Span{Start: 1, End: 2}, Text: "y"}},
		{ID: "bbb-1", Silence: &segment.Silence{Span: segment.Span{Start: 2, End: 3}, Kind: segment.KindGap}},
	}
	tl, err := timeline.FromSegments(3, segs)
	if err != nil {
		t.Fatal(err)
	}

	got, err := resolveIDs(tl, []string{"aaa-1", "bbb"})
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != "aaa-1" || got[1] != "bbb-1" {
		t.Fatalf("resolved = %v", got)
	}

	if _, err := resolveIDs(tl, []string{"aaa"}); err == nil {
		t.Fatal("expected ambiguity error")
	}
	if _, err := resolveIDs(tl, []string{"zzz"}); err == nil {
		t.Fatal("expected no-match error")
	}
}

func TestDeleteUndoRedoFlow(t *testing.T) {
	app := newTestApp(t)
	snap, silenceID := seedProject(t)

	del := newDeleteCmd(app)
	del.SetOut(io.Discard)
	del.SetArgs([]string{snap, shortID(silenceID)})
	if err := del.Execute(); err != nil {
		t.Fatalf("delete: %v", err)
	}

	p, err := project.Load(snap)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Timeline.Lookup(silenceID).Deleted {
		t.Fatal("delete not persisted")
	}
	if !p.History.CanUndo() {
		t.Fatal("undo stack not persisted")
	}

	undo := newUndoCmd(app)
	undo.SetOut(io.Discard)
	undo.SetArgs([]string{snap})
	if err := undo.Execute(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	p, err = project.Load(snap)
	if err != nil {
		t.Fatal(err)
	}
	if p.Timeline.Lookup(silenceID).Deleted {
		t.Fatal("undo not persisted")
	}

	redo := newRedoCmd(app)
	redo.SetOut(io.Discard)
	redo.SetArgs([]string{snap})
	if err := redo.Execute(); err != nil {
		t.Fatalf("redo: %v", err)
	}
	p, err = project.Load(snap)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Timeline.Lookup(silenceID).Deleted {
		t.Fatal("redo not persisted")
	}
}

func TestUndoOnFreshProjectIsNoOp(t *testing.T) {
	app := newTestApp(t)
	snap, _ := seedProject(t)

	var out bytes.Buffer
	undo := newUndoCmd(app)
	undo.SetOut(&out)
	undo.SetArgs([]string{snap})
	if err := undo.Execute(); err != nil {
		t.Fatalf("undo on empty history should be a no-op, got %v", err)
	}
	if !strings.Contains(out.String(), "nothing to undo") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestExportEDLToFile(t *testing.T) {
	app := newTestApp(t)
	snap, silenceID := seedProject(t)

	del := newDeleteCmd(app)
	del.SetOut(io.Discard)
	del.SetArgs([]string{snap, silenceID})
	if err := del.Execute(); err != nil {
		t.Fatal(err)
	}

	outPath := filepath.Join(t.TempDir(), "talk.edl")
	exp := newExportCmd(app)
	exp.SetOut(io.Discard)
	exp.SetArgs([]string{snap, "--format", "edl", "--out", outPath})
	if err := exp.Execute(); err != nil {
		t.Fatalf("export: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "TITLE: talk") || !strings.Contains(text, "FCM: NON-DROP FRAME") {
		t.Fatalf("edl content:\n%s", text)
	}
	if !strings.Contains(text, "001") || !strings.Contains(text, "002") {
		t.Fatalf("expected two events:\n%s", text)
	}
}

func TestExportScriptToStdout(t *testing.T) {
	app := newTestApp(t)
	snap, silenceID := seedProject(t)

	del := newDeleteCmd(app)
	del.SetOut(io.Discard)
	del.SetArgs([]string{snap, silenceID})
	if err := del.Execute(); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	exp := newExportCmd(app)
	exp.SetOut(&out)
	exp.SetArgs([]string{snap, "--format", "script"})
	if err := exp.Execute(); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(out.String(), "#!/bin/sh") || !strings.Contains(out.String(), "concat=n=2") {
		t.Fatalf("script output:\n%s", out.String())
	}
}

func TestSettingsUpdateRejectsInvalid(t *testing.T) {
	app := newTestApp(t)
	snap, _ := seedProject(t)

	set := newSettingsCmd(app)
	set.SetOut(io.Discard)
	set.SetArgs([]string{snap, "--buffer", "-1"})
	if err := set.Execute(); err == nil {
		t.Fatal("expected negative buffer rejection")
	}

	// Prior settings retained.
	p, err := project.Load(snap)
	if err != nil {
		t.Fatal(err)
	}
	if p.Settings.BufferSec != 0.050 || p.Settings.Revision != 1 {
		t.Fatalf("settings mutated after rejection: %+v", p.Settings)
	}
}

func TestRestoreAll(t *testing.T) {
	app := newTestApp(t)
	snap, silenceID := seedProject(t)

	del := newDeleteCmd(app)
	del.SetOut(io.Discard)
	del.SetArgs([]string{snap, silenceID})
	if err := del.Execute(); err != nil {
		t.Fatal(err)
	}

	res := newRestoreCmd(app)
	res.SetOut(io.Discard)
	res.SetArgs([]string{snap, "--all"})
	if err := res.Execute(); err != nil {
		t.Fatalf("restore --all: %v", err)
	}

	p, err := project.Load(snap)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Timeline.DeletedIDs()) != 0 {
		t.Fatal("restore --all left deleted segments")
	}
}
