// Package ports declares the engine's external collaborator contracts.
// Transcription, silence analysis and encoding are long-running external
// operations; the engine only consumes their interval sequences and hands
// back validated cut plans.
package ports

import (
	"context"

	"textcut/internal/export"
	"textcut/internal/segment"
)

// Transcriber produces the ordered word intervals for a media file.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string) ([]segment.Word, error)
}

// SilenceAnalyzer produces the ordered silence intervals for a media file
// under the project's detection settings.
type SilenceAnalyzer interface {
	DetectSilences(ctx context.Context, mediaPath string, st segment.Settings) ([]segment.Silence, error)
}

// Encoder renders a cut plan into a new media file and probes source
// metadata. Implementations block until the external process finishes and
// honor context cancellation.
type Encoder interface {
	Render(ctx context.Context, ranges []export.KeptRange, opts export.ScriptOptions) error
	Probe(ctx context.Context, mediaPath string) (segment.MediaRef, error)
}
