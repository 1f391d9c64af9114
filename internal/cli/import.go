package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"textcut/internal/fcpxml"
	"textcut/internal/ports"
	"textcut/internal/ports/adapters/ffmpeg"
	"textcut/internal/ports/adapters/whispercpp"
	"textcut/internal/project"
	"textcut/internal/segment"
	"textcut/internal/timeline"
	"textcut/internal/transcript"
)

func newImportCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create a project from an FCPXML document or transcript JSON",
		Long: `Create a project snapshot next to the media file.

Either --fcpxml (captions carry the word timing) or --words (whisper-style
transcript JSON) must be given. Silence detections are supplied with
--silences or produced with --detect-silences; without either, the whole
soundtrack between words becomes synthesized gaps.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImport(cmd, app)
		},
	}

	cmd.Flags().String("fcpxml", "", "FCPXML document to import")
	cmd.Flags().String("words", "", "Transcript JSON with word intervals")
	cmd.Flags().Bool("transcribe", false, "Run whisper.cpp on the media's audio track")
	cmd.Flags().String("silences", "", "Silence detections JSON")
	cmd.Flags().Bool("detect-silences", false, "Run ffmpeg silencedetect on the media")
	cmd.Flags().String("media", "", "Source media path (overrides the document's media-rep)")
	cmd.Flags().String("name", "", "Project name (defaults to the media stem)")
	cmd.Flags().Float64("duration", 0, "Media duration in seconds (probed when omitted)")
	cmd.Flags().Float64("fps", 0, "Media frame rate (probed when omitted)")
	return cmd
}

func runImport(cmd *cobra.Command, app *appState) error {
	fcpxmlPath, _ := cmd.Flags().GetString("fcpxml")
	wordsPath, _ := cmd.Flags().GetString("words")
	silencesPath, _ := cmd.Flags().GetString("silences")
	mediaPath, _ := cmd.Flags().GetString("media")
	name, _ := cmd.Flags().GetString("name")
	duration, _ := cmd.Flags().GetFloat64("duration")
	fps, _ := cmd.Flags().GetFloat64("fps")

	transcribe, _ := cmd.Flags().GetBool("transcribe")
	modes := 0
	for _, on := range []bool{fcpxmlPath != "", wordsPath != "", transcribe} {
		if on {
			modes++
		}
	}
	if modes != 1 {
		return errors.New("exactly one of --fcpxml, --words or --transcribe is required")
	}

	st := segment.Settings{
		ThresholdDB:   app.cfg.Silence.ThresholdDB,
		BufferSec:     app.cfg.Silence.BufferSec,
		MinSilenceSec: app.cfg.Silence.MinSilenceSec,
		Revision:      1,
	}

	var (
		words  []segment.Word
		media  segment.MediaRef
		source string
	)
	switch {
	case fcpxmlPath != "":
		doc, err := fcpxml.ParseFile(fcpxmlPath)
		if err != nil {
			return err
		}
		words = doc.Words
		media = doc.Media()
		source = fcpxmlPath
	case wordsPath != "":
		var err error
		words, err = transcript.LoadWords(wordsPath)
		if err != nil {
			return err
		}
	}
	if mediaPath != "" {
		media.Path = mediaPath
	}
	if media.Path == "" {
		return errors.New("no media path: pass --media or import an FCPXML with a media-rep")
	}
	if duration > 0 {
		media.Duration = duration
	}
	if fps > 0 {
		media.FPS = fps
	}
	if err := probeMissing(cmd.Context(), app, &media); err != nil {
		return err
	}
	if transcribe {
		var err error
		words, err = transcribeMedia(cmd.Context(), app, media.Path)
		if err != nil {
			return err
		}
	}

	detect, _ := cmd.Flags().GetBool("detect-silences")
	if detect && silencesPath != "" {
		return errors.New("--silences and --detect-silences are mutually exclusive")
	}
	var silences []segment.Silence
	switch {
	case silencesPath != "":
		var err error
		silences, err = transcript.LoadSilences(silencesPath, st.MinSilenceSec)
		if err != nil {
			return err
		}
	case detect:
		var err error
		silences, err = detectSilences(cmd.Context(), app, media.Path, st)
		if err != nil {
			return err
		}
	}

	tl, err := timeline.Build(words, silences, media.Duration)
	if err != nil {
		return err
	}

	if name == "" {
		base := filepath.Base(media.Path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	p, err := project.New(name, media, tl, st)
	if err != nil {
		return err
	}
	p.SourceFCPXML = source

	snap := project.SnapshotPath(media.Path)
	lock, err := project.Acquire(snap)
	if err != nil {
		return err
	}
	defer lock.Release()
	if err := p.Save(snap); err != nil {
		return err
	}
	app.syncCatalog(p, snap)

	stats := p.Stats()
	app.log.Info("project imported",
		"snapshot", snap,
		"segments", stats.Segments,
		"words", stats.Words,
		"silences", stats.Silences,
	)
	fmt.Fprintln(cmd.OutOrStdout(), snap)
	return nil
}

// detectSilences asks the external audio analyzer for silence intervals
// under the project's detection settings.
func detectSilences(ctx context.Context, app *appState, mediaPath string, st segment.Settings) ([]segment.Silence, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	var analyzer ports.SilenceAnalyzer = ffmpeg.New(app.cfg.Tools.FFmpeg, app.cfg.Tools.FFprobe)
	return analyzer.DetectSilences(ctx, mediaPath, st)
}

// transcribeMedia extracts a mono 16 kHz WAV and runs whisper.cpp over it.
func transcribeMedia(ctx context.Context, app *appState, mediaPath string) ([]segment.Word, error) {
	if app.cfg.Tools.WhisperBin == "" || app.cfg.Tools.WhisperModel == "" {
		return nil, errors.New("--transcribe needs tools.whisper_bin and tools.whisper_model in the config")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Hour)
	defer cancel()

	workDir, err := os.MkdirTemp("", "textcut-import-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(workDir)

	wav := filepath.Join(workDir, "audio.wav")
	enc := ffmpeg.New(app.cfg.Tools.FFmpeg, app.cfg.Tools.FFprobe)
	if err := enc.ExtractAudioMono16k(ctx, mediaPath, wav); err != nil {
		return nil, err
	}

	var asr ports.Transcriber = whispercpp.New(app.cfg.Tools.WhisperBin, app.cfg.Tools.WhisperModel)
	return asr.Transcribe(ctx, wav)
}

// probeMissing fills duration/fps/dimensions from ffprobe when the import
// inputs did not provide them.
func probeMissing(ctx context.Context, app *appState, media *segment.MediaRef) error {
	if media.Duration > 0 && media.FPS > 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	enc := ffmpeg.New(app.cfg.Tools.FFmpeg, app.cfg.Tools.FFprobe)
	probed, err := enc.Probe(ctx, media.Path)
	if err != nil {
		return fmt.Errorf("probe media (pass --duration and --fps to skip): %w", err)
	}
	if media.Duration <= 0 {
		media.Duration = probed.Duration
	}
	if media.FPS <= 0 {
		media.FPS = probed.FPS
	}
	if media.Width == 0 {
		media.Width = probed.Width
	}
	if media.Height == 0 {
		media.Height = probed.Height
	}
	return nil
}
