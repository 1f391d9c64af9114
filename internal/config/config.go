// Package config loads the TOML configuration controlling silence defaults,
// filler lexicons, external tool paths and output conventions. Everything has
// a working default; a config file only overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Silence contains the default detection parameters seeded into new projects.
type Silence struct {
	ThresholdDB   float64 `toml:"threshold_db"`
	BufferSec     float64 `toml:"buffer_s"`
	MinSilenceSec float64 `toml:"min_silence_s"`
}

// Fillers contains the disfluency lexicons. Hard entries are near-certain
// fillers, soft entries need human review before deleting.
type Fillers struct {
	Hard []string `toml:"hard"`
	Soft []string `toml:"soft"`
}

// Tools contains paths to the external binaries. The whisper paths are only
// required when importing with --transcribe.
type Tools struct {
	FFmpeg       string `toml:"ffmpeg"`
	FFprobe      string `toml:"ffprobe"`
	WhisperBin   string `toml:"whisper_bin"`
	WhisperModel string `toml:"whisper_model"`
}

// Export contains output conventions for the renderers.
type Export struct {
	Reel string  `toml:"reel"`
	FPS  float64 `toml:"fps"`
}

// Catalog contains the project registry location.
type Catalog struct {
	Path string `toml:"path"`
}

// Config encapsulates all textcut configuration.
type Config struct {
	Logging Logging `toml:"logging"`
	Silence Silence `toml:"silence"`
	Fillers Fillers `toml:"fillers"`
	Tools   Tools   `toml:"tools"`
	Export  Export  `toml:"export"`
	Catalog Catalog `toml:"catalog"`
}

const (
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultThresholdDB = -40.0
	defaultBufferSec   = 0.050
	defaultMinSilence  = 0.300
	defaultReel        = "AX"
	defaultFPS         = 25.0
	defaultCatalogPath = "~/.local/share/textcut/catalog.db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{Format: defaultLogFormat, Level: defaultLogLevel},
		Silence: Silence{
			ThresholdDB:   defaultThresholdDB,
			BufferSec:     defaultBufferSec,
			MinSilenceSec: defaultMinSilence,
		},
		Fillers: Fillers{
			Hard: []string{"um", "uh", "uhm", "erm", "hmm"},
			Soft: []string{"like", "you know", "basically", "actually", "literally"},
		},
		Tools:   Tools{FFmpeg: "ffmpeg", FFprobe: "ffprobe"},
		Export:  Export{Reel: defaultReel, FPS: defaultFPS},
		Catalog: Catalog{Path: defaultCatalogPath},
	}
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/textcut/config.toml")
}

// Load reads the configuration. Resolution order: explicit path argument,
// TEXTCUT_CONFIG env var, the default location. A missing file is not an
// error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("TEXTCUT_CONFIG")
	}
	explicit := path != ""
	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		path, err = expandPath(path)
		if err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if derr := toml.NewDecoder(f).Decode(&cfg); derr != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, derr)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// Defaults only.
	default:
		return nil, fmt.Errorf("open config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	p, err := expandPath(c.Catalog.Path)
	if err != nil {
		return err
	}
	c.Catalog.Path = p
	for i, w := range c.Fillers.Hard {
		c.Fillers.Hard[i] = strings.ToLower(strings.TrimSpace(w))
	}
	for i, w := range c.Fillers.Soft {
		c.Fillers.Soft[i] = strings.ToLower(strings.TrimSpace(w))
	}
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateSilence(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if c.Tools.FFmpeg == "" {
		return errors.New("tools.ffmpeg must not be empty")
	}
	if c.Tools.FFprobe == "" {
		return errors.New("tools.ffprobe must not be empty")
	}
	if c.Catalog.Path == "" {
		return errors.New("catalog.path must not be empty")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn or error", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateSilence() error {
	if c.Silence.ThresholdDB > 0 || c.Silence.ThresholdDB < -120 {
		return fmt.Errorf("silence.threshold_db %.1f out of range [-120, 0]", c.Silence.ThresholdDB)
	}
	if c.Silence.BufferSec < 0 {
		return errors.New("silence.buffer_s must not be negative")
	}
	if c.Silence.MinSilenceSec < 0 {
		return errors.New("silence.min_silence_s must not be negative")
	}
	return nil
}

func (c *Config) validateExport() error {
	if c.Export.Reel == "" {
		return errors.New("export.reel must not be empty")
	}
	if c.Export.FPS <= 0 {
		return errors.New("export.fps must be positive")
	}
	return nil
}

func expandPath(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
	}
	return p, nil
}
