package export

import (
	"strings"
	"testing"
)

func TestTimecode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		sec  float64
		fps  float64
		want string
	}{
		{0, 25, "00:00:00:00"},
		{1, 25, "00:00:01:00"},
		{1.5, 25, "00:00:01:13"}, // 37.5 frames rounds to 38
		{0.55, 25, "00:00:00:14"},
		{3661, 25, "01:01:01:00"},
		{1, 29.97, "00:00:01:00"}, // 29.97 frames rounds to 30, one full nominal second
	}
	for _, tc := range cases {
		if got := Timecode(tc.sec, tc.fps); got != tc.want {
			t.Fatalf("Timecode(%v, %v) = %q, want %q", tc.sec, tc.fps, got, tc.want)
		}
	}

	// Rounding to nearest, not truncation: 0.999s at 25fps is 24.975
	// frames -> frame 25 -> 00:00:01:00.
	if got := Timecode(0.999, 25); got != "00:00:01:00" {
		t.Fatalf("Timecode(0.999, 25) = %q", got)
	}
}

func TestRenderEDL(t *testing.T) {
	t.Parallel()

	ranges := []KeptRange{
		{Start: 0, End: 0.55},
		{Start: 1.25, End: 1.8},
	}
	out, err := RenderEDL(ranges, EDLOptions{Title: "demo", Reel: "TAPE1", FPS: 25})
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "TITLE: demo" {
		t.Fatalf("title line: %q", lines[0])
	}
	if lines[1] != "FCM: NON-DROP FRAME" {
		t.Fatalf("fcm line: %q", lines[1])
	}

	events := lines[3:]
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %v", len(events), events)
	}
	if !strings.HasPrefix(events[0], "001  TAPE1") {
		t.Fatalf("event 1: %q", events[0])
	}
	if !strings.Contains(events[0], "AA/V") || !strings.Contains(events[0], " C ") {
		t.Fatalf("event 1 missing channel/cut: %q", events[0])
	}

	// Event 1: source 0 -> 0.55, record 0 -> 0.55.
	if !strings.Contains(events[0], "00:00:00:00 00:00:00:14 00:00:00:00 00:00:00:14") {
		t.Fatalf("event 1 timecodes: %q", events[0])
	}
	// Event 2: source 1.25 -> 1.8, record resumes at 0.55 cumulative and
	// ends at 1.1 (27.5 frames, rounded to 28).
	if !strings.HasPrefix(events[1], "002") {
		t.Fatalf("event 2: %q", events[1])
	}
	if !strings.Contains(events[1], "00:00:01:06 00:00:01:20 00:00:00:14 00:00:01:03") {
		t.Fatalf("event 2 timecodes: %q", events[1])
	}
}

func TestRenderEDLEmpty(t *testing.T) {
	t.Parallel()

	if _, err := RenderEDL(nil, EDLOptions{}); err == nil {
		t.Fatal("expected error for empty plan")
	}
}

func TestRenderEDLDefaults(t *testing.T) {
	t.Parallel()

	out, err := RenderEDL([]KeptRange{{Start: 0, End: 1}}, EDLOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "TITLE: TEXTCUT EXPORT") {
		t.Fatalf("missing default title: %q", out)
	}
	if !strings.Contains(out, "AX") {
		t.Fatalf("missing default reel: %q", out)
	}
}
