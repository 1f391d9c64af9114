package segment

import "fmt"

// Settings holds the project-scoped silence parameters. Revision increases
// on every accepted change so exporters can detect staleness relative to the
// last analysis pass. Changing BufferSec never invalidates stored silences:
// detection and buffering are decoupled, the buffer is applied at export time.
type Settings struct {
	ThresholdDB   float64 `json:"threshold_db"`
	BufferSec     float64 `json:"buffer_s"`
	MinSilenceSec float64 `json:"min_silence_s"`
	Revision      uint64  `json:"revision"`
}

// DefaultSettings mirrors the detection defaults: -40 dBFS threshold,
// 50 ms buffer, 300 ms minimum silence.
func DefaultSettings() Settings {
	return Settings{ThresholdDB: -40.0, BufferSec: 0.050, MinSilenceSec: 0.300, Revision: 1}
}

func validateSettings(thresholdDB, bufferSec, minSilenceSec float64) error {
	if thresholdDB > 0 || thresholdDB < -120 {
		return fmt.Errorf("threshold %.1f dB out of range [-120, 0]", thresholdDB)
	}
	if bufferSec < 0 {
		return fmt.Errorf("buffer %.3f s must not be negative", bufferSec)
	}
	if minSilenceSec < 0 {
		return fmt.Errorf("min silence %.3f s must not be negative", minSilenceSec)
	}
	return nil
}

// Update validates and applies new values, bumping Revision. On error the
// previous settings are retained untouched.
func (s *Settings) Update(thresholdDB, bufferSec, minSilenceSec float64) error {
	if err := validateSettings(thresholdDB, bufferSec, minSilenceSec); err != nil {
		return err
	}
	s.ThresholdDB = thresholdDB
	s.BufferSec = bufferSec
	s.MinSilenceSec = minSilenceSec
	s.Revision++
	return nil
}

func (s Settings) Validate() error {
	return validateSettings(s.ThresholdDB, s.BufferSec, s.MinSilenceSec)
}
