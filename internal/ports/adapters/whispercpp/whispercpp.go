// Package whispercpp adapts the whisper.cpp binary as a Transcriber: it
// extracts word-level timing from the media's audio track and returns the
// ordered word intervals the timeline builder consumes.
package whispercpp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"textcut/internal/segment"
	"textcut/internal/transcript"
)

type Adapter struct {
	bin   string
	model string
}

func New(binPath, modelPath string) *Adapter {
	return &Adapter{bin: binPath, model: modelPath}
}

// Transcribe runs whisper.cpp over a mono 16 kHz WAV of the media (the
// caller extracts it first) and parses the JSON output into word intervals.
func (a *Adapter) Transcribe(ctx context.Context, wavPath string) ([]segment.Word, error) {
	if a.bin == "" || a.model == "" {
		return nil, fmt.Errorf("whisper.cpp binary and model paths are required")
	}
	workDir, err := os.MkdirTemp("", "textcut-whisper-*")
	if err != nil {
		return nil, fmt.Errorf("whisper workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	outPrefix := filepath.Join(workDir, "whisper")
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
		"-ml", "1", // word-level segments
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	words, err := transcript.LoadWords(outPrefix + ".json")
	if err != nil {
		return nil, fmt.Errorf("whisper.cpp output: %w", err)
	}
	return words, nil
}
