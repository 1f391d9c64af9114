// Package export derives the ordered kept-range list from an edited
// timeline and renders it into the interchange-independent output formats:
// a CMX-3600 edit decision list, an ffmpeg cut script, and the argument
// vector handed to the external encoder.
package export

import (
	"errors"

	"textcut/internal/segment"
	"textcut/internal/timeline"
)

// KeptRange is a source-media interval that survives deletion and buffer
// shrinkage. Record (edited) positions are derived as the cumulative sum of
// prior kept durations; they are never stored.
type KeptRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (r KeptRange) Duration() float64 { return r.End - r.Start }

var ErrEmptyPlan = errors.New("nothing left to export: every segment is deleted")

// removal is an interval cut from the source. Zero-width removals are kept:
// they split the surrounding material into two abutting ranges, which is how
// a fully-clamped silence cut is represented.
type removal struct {
	start, end float64
}

// Plan walks the timeline and produces the ordered kept ranges.
//
// Deleted words are excised in full. For each maximal run of consecutive
// deleted segments, the removed interval shrinks inward by the buffer on any
// side where the run's boundary segment is a silence bordering still-present
// content; buffer never applies to word cuts, and an edge of the timeline
// gets no buffer. When buffers from both sides collide the cut collapses to
// a zero-width point, clamped inside the run: the cut never inverts.
func Plan(t *timeline.Timeline, st segment.Settings) ([]KeptRange, error) {
	buffer := st.BufferSec

	var removals []removal
	n := len(t.Segments)
	for i := 0; i < n; {
		if !t.Segments[i].Deleted {
			i++
			continue
		}
		// Maximal deleted run [i, j).
		j := i
		for j < n && t.Segments[j].Deleted {
			j++
		}

		first, last := t.Segments[i], t.Segments[j-1]
		runStart := first.Span().Start
		runEnd := last.Span().End

		left := 0.0
		if first.IsSilence() && i > 0 {
			left = buffer
		}
		right := 0.0
		if last.IsSilence() && j < n {
			right = buffer
		}

		rs := runStart + left
		re := runEnd - right
		if rs > re {
			// Buffers collide: collapse to the midpoint of the overshoot,
			// clamped into the run.
			m := (rs + re) / 2
			if m < runStart {
				m = runStart
			}
			if m > runEnd {
				m = runEnd
			}
			rs, re = m, m
		}
		removals = append(removals, removal{start: rs, end: re})
		i = j
	}

	// Complement over [0, Duration]. Removals come out of the walk ordered
	// and disjoint (each run's interval stays inside the run).
	var kept []KeptRange
	cursor := 0.0
	for _, r := range removals {
		if r.start > cursor {
			kept = append(kept, KeptRange{Start: cursor, End: r.start})
		}
		if r.end > cursor {
			cursor = r.end
		}
	}
	if cursor < t.Duration {
		kept = append(kept, KeptRange{Start: cursor, End: t.Duration})
	}

	if len(kept) == 0 {
		return nil, ErrEmptyPlan
	}
	return kept, nil
}

// TotalDuration sums the kept durations; exporters verify their rendered
// output against this before writing anything.
func TotalDuration(ranges []KeptRange) float64 {
	total := 0.0
	for _, r := range ranges {
		total += r.Duration()
	}
	return total
}
