// Package ffmpeg adapts the external encoder: it executes the cut plan the
// export planner produced and probes source media metadata via ffprobe.
package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"textcut/internal/export"
	"textcut/internal/segment"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

// Render executes the single-invocation filter-graph cut. The argument plan
// comes from the export planner; this adapter only spawns and reports.
func (a *Adapter) Render(ctx context.Context, ranges []export.KeptRange, opts export.ScriptOptions) error {
	opts.FFmpeg = a.ffmpeg
	args, err := export.EncodeArgs(ranges, opts)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg render: %w\n%s", err, string(b))
	}
	return nil
}

// ExtractAudioMono16k produces the mono 16 kHz WAV the external transcriber
// and silence analyzer consume.
func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inMedia, outWav string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", inMedia,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, string(b))
	}
	return nil
}

// DetectSilences runs the silencedetect filter over the media's audio track
// and returns the reported intervals. The filter only reports silences at
// least st.MinSilenceSec long, so every detection is a long silence.
func (a *Adapter) DetectSilences(ctx context.Context, mediaPath string, st segment.Settings) ([]segment.Silence, error) {
	filter := fmt.Sprintf("silencedetect=noise=%.1fdB:d=%.3f", st.ThresholdDB, st.MinSilenceSec)
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-hide_banner",
		"-i", mediaPath,
		"-af", filter,
		"-f", "null", "-",
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg silencedetect: %w\n%s", err, string(b))
	}
	return parseSilences(string(b))
}

// parseSilences reads silencedetect's log lines:
//
//	[silencedetect @ 0x...] silence_start: 1.234
//	[silencedetect @ 0x...] silence_end: 2.345 | silence_duration: 1.111
func parseSilences(out string) ([]segment.Silence, error) {
	var (
		silences []segment.Silence
		start    float64
		open     bool
	)
	for _, line := range strings.Split(out, "\n") {
		if i := strings.Index(line, "silence_start:"); i >= 0 {
			v, err := strconv.ParseFloat(strings.TrimSpace(line[i+len("silence_start:"):]), 64)
			if err != nil {
				return nil, fmt.Errorf("parse silence_start in %q: %w", strings.TrimSpace(line), err)
			}
			// silencedetect may report a slightly negative start at the
			// very beginning of the stream.
			if v < 0 {
				v = 0
			}
			start, open = v, true
			continue
		}
		if i := strings.Index(line, "silence_end:"); i >= 0 {
			rest := strings.TrimSpace(line[i+len("silence_end:"):])
			field, _, _ := strings.Cut(rest, " ")
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("parse silence_end in %q: %w", strings.TrimSpace(line), err)
			}
			if open && v > start {
				silences = append(silences, segment.Silence{
					Span: segment.Span{Start: start, End: v},
					Kind: segment.KindLong,
				})
			}
			open = false
		}
	}
	return silences, nil
}

// Probe reads duration, frame rate and dimensions from the media container.
func (a *Adapter) Probe(ctx context.Context, mediaPath string) (segment.MediaRef, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		mediaPath,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return segment.MediaRef{}, fmt.Errorf("ffprobe %s: %w\n%s", mediaPath, err, string(b))
	}
	ref, err := parseProbe(b)
	if err != nil {
		return segment.MediaRef{}, fmt.Errorf("ffprobe %s: %w", mediaPath, err)
	}
	ref.Path = mediaPath
	return ref, nil
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
}

func parseProbe(data []byte) (segment.MediaRef, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return segment.MediaRef{}, fmt.Errorf("parse probe output: %w", err)
	}

	var ref segment.MediaRef
	if out.Format.Duration != "" {
		sec, err := strconv.ParseFloat(out.Format.Duration, 64)
		if err != nil {
			return segment.MediaRef{}, fmt.Errorf("parse duration %q: %w", out.Format.Duration, err)
		}
		ref.Duration = sec
	}
	for _, s := range out.Streams {
		if s.CodecType != "video" {
			continue
		}
		ref.Width = s.Width
		ref.Height = s.Height
		ref.FPS = parseRate(s.RFrameRate)
		break
	}
	return ref, nil
}

// parseRate reads ffprobe's fractional frame rate, e.g. "30000/1001".
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		f, _ := strconv.ParseFloat(s, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
