package export

import (
	"fmt"
	"strings"
)

// EDLOptions parameterize the CMX-3600 renderer.
type EDLOptions struct {
	Title string
	Reel  string
	FPS   float64
}

// RenderEDL emits one cut event per kept range. Source in/out address the
// original media; record in/out accumulate the kept durations, so the
// events splice back-to-back on the edited timeline.
func RenderEDL(ranges []KeptRange, o EDLOptions) (string, error) {
	if len(ranges) == 0 {
		return "", ErrEmptyPlan
	}
	title := o.Title
	if title == "" {
		title = "TEXTCUT EXPORT"
	}
	reel := o.Reel
	if reel == "" {
		reel = "AX"
	}
	fps := o.FPS
	if fps <= 0 {
		fps = 25
	}

	var b strings.Builder
	fmt.Fprintf(&b, "TITLE: %s\n", title)
	b.WriteString("FCM: NON-DROP FRAME\n\n")

	record := 0.0
	for i, r := range ranges {
		recEnd := record + r.Duration()
		fmt.Fprintf(&b, "%03d  %-8s AA/V  C        %s %s %s %s\n",
			i+1, reel,
			Timecode(r.Start, fps), Timecode(r.End, fps),
			Timecode(record, fps), Timecode(recEnd, fps),
		)
		record = recEnd
	}
	return b.String(), nil
}
