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

	"textcut/internal/export"
	"textcut/internal/fcpxml"
	"textcut/internal/ports/adapters/ffmpeg"
)

func newExportCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <project>",
		Short: "Render the cut plan into an output format",
		Long: `Derives the kept ranges from the current edit state and renders them.

Formats:
  fcpxml  rewrite the imported document's spine into clip references
  edl     CMX-3600 edit decision list
  script  standalone shell script invoking ffmpeg
  mp4     run ffmpeg directly and produce the cut video`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, app, args[0])
		},
	}
	cmd.Flags().String("format", "edl", "Output format: fcpxml|edl|script|mp4")
	cmd.Flags().String("out", "", "Output path (stdout for edl/script when omitted)")
	cmd.Flags().String("mode", "filter", "Cut mode: filter|copy (mp4 supports filter only)")
	cmd.Flags().String("reel", "", "EDL reel name (default from config)")
	cmd.Flags().Float64("fps", 0, "Timecode frame rate (default: media frame rate)")
	cmd.Flags().String("video", "", "Video target the script writes (script format only)")
	return cmd
}

func runExport(cmd *cobra.Command, app *appState, arg string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")
	mode, _ := cmd.Flags().GetString("mode")
	reel, _ := cmd.Flags().GetString("reel")
	fps, _ := cmd.Flags().GetFloat64("fps")
	video, _ := cmd.Flags().GetString("video")

	p, _, err := loadProject(arg)
	if err != nil {
		return err
	}
	plan, err := export.Plan(p.Timeline, p.Settings)
	if err != nil {
		return err
	}
	app.log.Info("cut plan ready",
		"ranges", len(plan),
		"kept", fmt.Sprintf("%.3fs", export.TotalDuration(plan)),
		"settings_revision", p.Settings.Revision,
	)

	if fps == 0 {
		fps = p.Media.FPS
	}
	if fps == 0 {
		fps = app.cfg.Export.FPS
	}
	if reel == "" {
		reel = app.cfg.Export.Reel
	}
	stem := strings.TrimSuffix(p.Media.Path, filepath.Ext(p.Media.Path))

	switch format {
	case "fcpxml":
		if p.SourceFCPXML == "" {
			return errors.New("project was not imported from an FCPXML document")
		}
		if outPath == "" {
			outPath = stem + ".cut.fcpxml"
		}
		doc, err := fcpxml.ParseFile(p.SourceFCPXML)
		if err != nil {
			return err
		}
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		if err := doc.WriteExport(f, p.Timeline, plan); err != nil {
			f.Close()
			os.Remove(outPath)
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

	case "edl":
		text, err := export.RenderEDL(plan, export.EDLOptions{Title: p.Name, Reel: reel, FPS: fps})
		if err != nil {
			return err
		}
		if outPath == "" {
			fmt.Fprint(cmd.OutOrStdout(), text)
		} else if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("write edl: %w", err)
		}

	case "script":
		if video == "" {
			video = stem + ".cut.mp4"
		}
		text, err := export.RenderScript(plan, export.ScriptOptions{
			FFmpeg: app.cfg.Tools.FFmpeg,
			Input:  p.Media.Path,
			Output: video,
			Mode:   export.ScriptMode(mode),
		})
		if err != nil {
			return err
		}
		if outPath == "" {
			fmt.Fprint(cmd.OutOrStdout(), text)
		} else if err := os.WriteFile(outPath, []byte(text), 0o755); err != nil {
			return fmt.Errorf("write script: %w", err)
		}

	case "mp4":
		if outPath == "" {
			outPath = stem + ".cut.mp4"
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, cancel := context.WithTimeout(ctx, 3*time.Hour)
		defer cancel()

		enc := ffmpeg.New(app.cfg.Tools.FFmpeg, app.cfg.Tools.FFprobe)
		err := enc.Render(ctx, plan, export.ScriptOptions{
			Input:  p.Media.Path,
			Output: outPath,
			Mode:   export.ScriptMode(mode),
		})
		if err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown format %q (want fcpxml, edl, script or mp4)", format)
	}

	app.recordExport(p.ID, format, outPath, len(plan))
	if outPath != "" {
		app.log.Info("export written", "format", format, "path", outPath)
	}
	return nil
}
