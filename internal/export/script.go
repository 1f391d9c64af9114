package export

import (
	"fmt"
	"strconv"
	"strings"
)

// ScriptMode selects how the rendered ffmpeg invocation cuts the media.
type ScriptMode string

const (
	// ModeFilter re-encodes through a trim+concat filter graph; cuts are
	// frame-accurate.
	ModeFilter ScriptMode = "filter"
	// ModeCopy splices without re-encoding. Cut points land on the nearest
	// keyframe, not the exact sample: fast, but not frame-accurate.
	ModeCopy ScriptMode = "copy"
)

// ScriptOptions parameterize the shell-script renderer and the encoder
// argument plan.
type ScriptOptions struct {
	FFmpeg string
	Input  string
	Output string
	Mode   ScriptMode
}

func (o *ScriptOptions) defaults() error {
	if o.FFmpeg == "" {
		o.FFmpeg = "ffmpeg"
	}
	if o.Input == "" {
		return fmt.Errorf("script: input path is empty")
	}
	if o.Output == "" {
		return fmt.Errorf("script: output path is empty")
	}
	switch o.Mode {
	case "":
		o.Mode = ModeFilter
	case ModeFilter, ModeCopy:
	default:
		return fmt.Errorf("script: unknown mode %q", o.Mode)
	}
	return nil
}

// EncodeArgs builds the single-invocation argument vector for the external
// encoder: the filter-graph cut. Stream-copy needs intermediate part files
// and is only available through RenderScript.
func EncodeArgs(ranges []KeptRange, o ScriptOptions) ([]string, error) {
	if err := o.defaults(); err != nil {
		return nil, err
	}
	if len(ranges) == 0 {
		return nil, ErrEmptyPlan
	}
	if o.Mode != ModeFilter {
		return nil, fmt.Errorf("script: %s mode requires intermediate files; render a script instead", o.Mode)
	}
	args := []string{
		"-y",
		"-i", o.Input,
		"-filter_complex", filterGraph(ranges),
		"-map", "[outv]",
		"-map", "[outa]",
		o.Output,
	}
	return args, nil
}

// RenderScript emits a standalone shell script realizing the cut plan.
func RenderScript(ranges []KeptRange, o ScriptOptions) (string, error) {
	if err := o.defaults(); err != nil {
		return "", err
	}
	if len(ranges) == 0 {
		return "", ErrEmptyPlan
	}

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("set -eu\n\n")

	switch o.Mode {
	case ModeFilter:
		fmt.Fprintf(&b, "%s -y -i %s \\\n", shellQuote(o.FFmpeg), shellQuote(o.Input))
		fmt.Fprintf(&b, "  -filter_complex %s \\\n", shellQuote(filterGraph(ranges)))
		fmt.Fprintf(&b, "  -map '[outv]' -map '[outa]' \\\n")
		fmt.Fprintf(&b, "  %s\n", shellQuote(o.Output))
	case ModeCopy:
		// Keyframe-snapped parts, then concat demuxer. Not frame-accurate.
		b.WriteString("tmpdir=$(mktemp -d)\n")
		b.WriteString("trap 'rm -rf \"$tmpdir\"' EXIT\n\n")
		for i, r := range ranges {
			fmt.Fprintf(&b, "%s -y -ss %s -to %s -i %s -c copy \"$tmpdir\"/part%03d.mp4\n",
				shellQuote(o.FFmpeg), fmtSeconds(r.Start), fmtSeconds(r.End),
				shellQuote(o.Input), i)
			fmt.Fprintf(&b, "printf \"file '%%s'\\n\" \"$tmpdir\"/part%03d.mp4 >> \"$tmpdir\"/concat.txt\n", i)
		}
		fmt.Fprintf(&b, "\n%s -y -f concat -safe 0 -i \"$tmpdir\"/concat.txt -c copy %s\n",
			shellQuote(o.FFmpeg), shellQuote(o.Output))
	}
	return b.String(), nil
}

// filterGraph builds the trim/atrim + concat filter chain, one video and one
// audio leg per kept range.
func filterGraph(ranges []KeptRange) string {
	var b strings.Builder
	for i, r := range ranges {
		fmt.Fprintf(&b, "[0:v]trim=start=%s:end=%s,setpts=PTS-STARTPTS[v%d];",
			fmtSeconds(r.Start), fmtSeconds(r.End), i)
		fmt.Fprintf(&b, "[0:a]atrim=start=%s:end=%s,asetpts=PTS-STARTPTS[a%d];",
			fmtSeconds(r.Start), fmtSeconds(r.End), i)
	}
	for i := range ranges {
		fmt.Fprintf(&b, "[v%d][a%d]", i, i)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=1:a=1[outv][outa]", len(ranges))
	return b.String()
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 6, 64)
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`*?[]{}()<>|&;!#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
