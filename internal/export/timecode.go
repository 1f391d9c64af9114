package export

import (
	"fmt"
	"math"
)

// Timecode converts seconds to HH:MM:SS:FF at the given frame rate,
// rounding to the nearest frame. Non-drop-frame counting: fractional rates
// like 29.97 use the nominal integer frame base (30).
func Timecode(sec, fps float64) string {
	if fps <= 0 {
		fps = 25
	}
	base := int64(math.Round(fps))
	if base < 1 {
		base = 1
	}
	frames := int64(math.Round(sec * fps))
	if frames < 0 {
		frames = 0
	}
	ff := frames % base
	totalSec := frames / base
	ss := totalSec % 60
	mm := (totalSec / 60) % 60
	hh := totalSec / 3600
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hh, mm, ss, ff)
}
