package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewJSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Options{Level: "debug", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("importing", slog.String("media", "talk.mp4"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output not json: %q", buf.String())
	}
	if rec["msg"] != "importing" || rec["media"] != "talk.mp4" {
		t.Fatalf("record = %v", rec)
	}
}

func TestNewConsoleLevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Options{Level: "warn", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	log.Info("hidden")
	log.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info leaked through warn level: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn missing: %q", out)
	}
}

func TestNewDefaultsAndErrors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := New(Options{Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("hidden at default info")
	if buf.Len() != 0 {
		t.Fatalf("debug leaked at default level: %q", buf.String())
	}

	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
