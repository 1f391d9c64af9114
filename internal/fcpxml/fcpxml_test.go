package fcpxml

import (
	"errors"
	"math"
	"strings"
	"testing"

	"textcut/internal/export"
	"textcut/internal/rational"
	"textcut/internal/segment"
	"textcut/internal/timeline"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE fcpxml>
<fcpxml version="1.11">
  <resources>
    <format id="r1" name="FFVideoFormat1080p25" frameDuration="1/25s" width="1920" height="1080"/>
    <asset id="r2" duration="9/5s" hasVideo="1" hasAudio="1" format="r1">
      <media-rep kind="original-media" src="file:///media/talk.mp4"/>
    </asset>
  </resources>
  <library>
    <event name="imports">
      <project name="talk">
        <sequence duration="9/5s" format="r1" tcStart="0s" tcFormat="NDF">
          <spine>
            <asset-clip ref="r2" offset="0s" duration="9/5s" tcFormat="NDF">
              <caption offset="0s" duration="1/2s"><text>Hello</text></caption>
              <caption offset="13/10s" duration="1/2s"><text>world</text></caption>
            </asset-clip>
          </spine>
        </sequence>
      </project>
    </event>
  </library>
</fcpxml>`

func parseSample(t *testing.T) *Document {
	t.Helper()
	d, err := Parse(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return d
}

func TestParseExtractsProject(t *testing.T) {
	t.Parallel()

	d := parseSample(t)
	if d.Version != "1.11" {
		t.Fatalf("version = %q", d.Version)
	}
	if d.AssetID != "r2" || d.FormatID != "r1" {
		t.Fatalf("ids = %q/%q", d.AssetID, d.FormatID)
	}
	if d.MediaPath != "/media/talk.mp4" {
		t.Fatalf("media path = %q", d.MediaPath)
	}
	if d.FPS != 25 || d.Width != 1920 || d.Height != 1080 {
		t.Fatalf("format = %v fps %dx%d", d.FPS, d.Width, d.Height)
	}
	if math.Abs(d.Duration-1.8) > 1e-9 {
		t.Fatalf("duration = %v", d.Duration)
	}

	if len(d.Words) != 2 {
		t.Fatalf("words = %v", d.Words)
	}
	if d.Words[0].Text != "Hello" || d.Words[0].Start != 0 || d.Words[0].End != 0.5 {
		t.Fatalf("word 0 = %+v", d.Words[0])
	}
	if d.Words[1].Text != "world" || math.Abs(d.Words[1].Start-1.3) > 1e-9 {
		t.Fatalf("word 1 = %+v", d.Words[1])
	}
}

func TestParseFormatErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		doc  string
	}{
		{"wrong root", `<project/>`},
		{"no resources", `<fcpxml version="1.11"><library/></fcpxml>`},
		{"caption missing offset", `<fcpxml><resources><asset id="r2" hasVideo="1"/></resources>
			<caption duration="1/2s"><text>x</text></caption></fcpxml>`},
		{"caption missing duration", `<fcpxml><resources><asset id="r2" hasVideo="1"/></resources>
			<caption offset="0s"><text>x</text></caption></fcpxml>`},
		{"zero denominator", `<fcpxml><resources><asset id="r2" hasVideo="1"/></resources>
			<caption offset="1/0s" duration="1/2s"><text>x</text></caption></fcpxml>`},
		{"junk offset", `<fcpxml><resources><asset id="r2" hasVideo="1"/></resources>
			<caption offset="abc" duration="1/2s"><text>x</text></caption></fcpxml>`},
		{"bad frameDuration", `<fcpxml><resources><format id="r1" frameDuration="x/ys"/>
			<asset id="r2" hasVideo="1" format="r1"/></resources></fcpxml>`},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(strings.NewReader(tc.doc))
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FormatError, got %v", err)
			}
		})
	}

	// Zero denominator is reported via the rational parser's sentinel.
	_, err := Parse(strings.NewReader(cases[4].doc))
	if !errors.Is(err, rational.ErrZeroDenominator) {
		t.Fatalf("expected ErrZeroDenominator in chain, got %v", err)
	}
}

func TestParseZeroDurationCaptionSkipped(t *testing.T) {
	t.Parallel()

	doc := `<fcpxml><resources><asset id="r2" hasVideo="1" duration="2s"/></resources>
		<caption offset="0s" duration="0s"><text>marker</text></caption>
		<caption offset="1s" duration="1/2s"><text>kept</text></caption></fcpxml>`
	d, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Words) != 1 || d.Words[0].Text != "kept" {
		t.Fatalf("words = %v", d.Words)
	}
}

// buildTimeline merges the sample's words with the long silence between them.
func buildTimeline(t *testing.T, d *Document) *timeline.Timeline {
	t.Helper()
	silences := []segment.Silence{
		{Span: segment.Span{Start: 0.5, End: 1.3}, Kind: segment.KindLong},
	}
	tl, err := timeline.Build(d.Words, silences, d.Duration)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tl
}

func TestExportEditedTimeline(t *testing.T) {
	t.Parallel()

	d := parseSample(t)
	tl := buildTimeline(t, d)
	for i := range tl.Segments {
		if tl.Segments[i].IsSilence() {
			tl.Segments[i].Deleted = true
		}
	}
	st := segment.DefaultSettings() // buffer 0.05
	ranges, err := export.Plan(tl, st)
	if err != nil {
		t.Fatal(err)
	}

	out, err := d.Export(tl, ranges)
	if err != nil {
		t.Fatal(err)
	}

	clips := out.Root().FindAll("asset-clip")
	if len(clips) != 2 {
		t.Fatalf("expected 2 clips, got %d", len(clips))
	}
	// Range [0, 0.55] at 25fps: 14 frames.
	if got := clips[0].AttrDefault("start", ""); got != "0s" {
		t.Fatalf("clip 0 start = %q", got)
	}
	if got := clips[0].AttrDefault("duration", ""); got != "14/25s" {
		t.Fatalf("clip 0 duration = %q", got)
	}
	// Range [1.25, 1.8]: source-in 31 frames, record resumes at 14 frames.
	if got := clips[1].AttrDefault("start", ""); got != "31/25s" {
		t.Fatalf("clip 1 start = %q", got)
	}
	if got := clips[1].AttrDefault("offset", ""); got != "14/25s" {
		t.Fatalf("clip 1 offset = %q", got)
	}
	if got := clips[1].AttrDefault("ref", ""); got != "r2" {
		t.Fatalf("clip 1 ref = %q", got)
	}

	seq := out.Root().First("sequence")
	if got := seq.AttrDefault("duration", ""); got != "28/25s" {
		t.Fatalf("sequence duration = %q", got)
	}

	// Surviving words ride along as captions at their edited position.
	caps := out.Root().FindAll("caption")
	if len(caps) != 2 {
		t.Fatalf("expected 2 captions, got %d", len(caps))
	}
	off, err := rational.Parse(caps[1].AttrDefault("offset", ""))
	if err != nil {
		t.Fatal(err)
	}
	// "world" starts 0.05s into the second range, recorded after 14 frames.
	if want := 14.0/25 + 0.05; math.Abs(off.Seconds()-want) > 1e-4 {
		t.Fatalf("world record offset = %v, want %v", off.Seconds(), want)
	}

	// The original tree is untouched.
	if got := d.tree.Root().First("sequence").AttrDefault("duration", ""); got != "9/5s" {
		t.Fatalf("source tree mutated: %q", got)
	}
}

func TestExportPassThroughAndRoundTrip(t *testing.T) {
	t.Parallel()

	d := parseSample(t)
	tl := buildTimeline(t, d)
	ranges, err := export.Plan(tl, segment.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	if err := d.WriteExport(&b, tl, ranges); err != nil {
		t.Fatal(err)
	}
	out := b.String()

	// Everything outside the spine survives verbatim.
	for _, want := range []string{
		`<!DOCTYPE fcpxml>`,
		`frameDuration="1/25s"`,
		`src="file:///media/talk.mp4"`,
		`<event name="imports">`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("export lost %q:\n%s", want, out)
		}
	}

	again, err := Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if len(again.Words) != len(d.Words) {
		t.Fatalf("round trip words: %v vs %v", again.Words, d.Words)
	}
	frame := 1.0 / d.FPS
	for i := range d.Words {
		if again.Words[i].Text != d.Words[i].Text {
			t.Fatalf("word %d text %q != %q", i, again.Words[i].Text, d.Words[i].Text)
		}
		if math.Abs(again.Words[i].Start-d.Words[i].Start) > frame ||
			math.Abs(again.Words[i].End-d.Words[i].End) > frame {
			t.Fatalf("word %d span drifted: %+v vs %+v", i, again.Words[i], d.Words[i])
		}
	}
	if math.Abs(again.Duration-d.Duration) > frame {
		t.Fatalf("duration drifted: %v vs %v", again.Duration, d.Duration)
	}
}

func TestExportDurationSelfCheck(t *testing.T) {
	t.Parallel()

	d := parseSample(t)
	// Each 59ms range rounds down to one 40ms frame; over three ranges the
	// accumulated loss exceeds a frame and the export must refuse.
	ranges := []export.KeptRange{
		{Start: 0.0, End: 0.059},
		{Start: 0.2, End: 0.259},
		{Start: 0.4, End: 0.459},
	}
	_, err := d.Export(nil, ranges)
	if !errors.Is(err, ErrDurationMismatch) {
		t.Fatalf("expected ErrDurationMismatch, got %v", err)
	}
}

func TestExportEmptyPlan(t *testing.T) {
	t.Parallel()

	d := parseSample(t)
	if _, err := d.Export(nil, nil); !errors.Is(err, export.ErrEmptyPlan) {
		t.Fatalf("expected ErrEmptyPlan, got %v", err)
	}
}
