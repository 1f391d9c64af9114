// Package timeline merges word and silence intervals into the ordered,
// gapless segment sequence the editor operates on, and provides the queries
// edit commands are built from.
package timeline

import (
	"fmt"
	"math"

	"textcut/internal/segment"
)

// boundarySlack is the float tolerance for the contiguity invariant.
// Boundaries are assigned from the same values during construction, so any
// larger difference is a builder defect, not rounding noise.
const boundarySlack = 1e-9

// Timeline is an ordered sequence of segments covering [0, Duration] with no
// gaps and no overlaps. Only the Deleted and Filler flags mutate after
// construction; spans, text and ids are fixed until a fresh analysis pass
// rebuilds the timeline.
type Timeline struct {
	Duration float64
	Segments []segment.Unified

	index map[string]int
}

// FromSegments wraps an already-built segment sequence, e.g. one restored
// from a project snapshot, and verifies the timeline invariants.
func FromSegments(duration float64, segs []segment.Unified) (*Timeline, error) {
	t := &Timeline{Duration: duration, Segments: segs}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.reindex()
	return t, nil
}

func (t *Timeline) reindex() {
	t.index = make(map[string]int, len(t.Segments))
	for i, s := range t.Segments {
		t.index[s.ID] = i
	}
}

// Lookup returns the segment with the given id, or nil.
func (t *Timeline) Lookup(id string) *segment.Unified {
	if t.index == nil {
		t.reindex()
	}
	i, ok := t.index[id]
	if !ok {
		return nil
	}
	return &t.Segments[i]
}

// Validate checks the central invariant: contiguous, non-overlapping
// segments covering exactly [0, Duration].
func (t *Timeline) Validate() error {
	if t.Duration <= 0 {
		return fmt.Errorf("timeline duration %.6f must be positive", t.Duration)
	}
	if len(t.Segments) == 0 {
		return fmt.Errorf("timeline has no segments")
	}
	seen := make(map[string]struct{}, len(t.Segments))
	cursor := 0.0
	for i, s := range t.Segments {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("segment %d: duplicate id %s", i, s.ID)
		}
		seen[s.ID] = struct{}{}
		if math.Abs(s.Span().Start-cursor) > boundarySlack {
			return fmt.Errorf("segment %d: starts at %.9f, expected %.9f", i, s.Span().Start, cursor)
		}
		cursor = s.Span().End
	}
	if math.Abs(cursor-t.Duration) > boundarySlack {
		return fmt.Errorf("timeline covers %.9f of %.9f", cursor, t.Duration)
	}
	return nil
}

// Stats summarises the edit state for front ends and the catalog.
type Stats struct {
	Segments  int
	Words     int
	Silences  int
	Deleted   int
	Fillers   int
	TimeSaved float64
}

// ComputeStats walks the timeline once. TimeSaved counts full spans for
// deleted words and the buffered deletable window for deleted silences,
// matching what the export planner will actually remove.
func (t *Timeline) ComputeStats(st segment.Settings) Stats {
	var out Stats
	out.Segments = len(t.Segments)
	for _, s := range t.Segments {
		switch {
		case s.IsWord():
			out.Words++
			if s.Filler {
				out.Fillers++
			}
			if s.Deleted {
				out.Deleted++
				out.TimeSaved += s.Span().Duration()
			}
		case s.IsSilence():
			out.Silences++
			if s.Deleted {
				out.Deleted++
				if w, ok := deletableWindow(s.Span(), st.BufferSec); ok {
					out.TimeSaved += w.Duration()
				}
			}
		}
	}
	return out
}

// deletableWindow shrinks a silence span by the buffer on both sides.
// Returns false when the silence is too short to survive the buffer.
func deletableWindow(sp segment.Span, buffer float64) (segment.Span, bool) {
	w := segment.Span{Start: sp.Start + buffer, End: sp.End - buffer}
	if w.End <= w.Start {
		return segment.Span{}, false
	}
	return w, true
}

// DeletedIDs returns the ids of all currently deleted segments, in timeline
// order. Used to build a restore-all command.
func (t *Timeline) DeletedIDs() []string {
	var ids []string
	for _, s := range t.Segments {
		if s.Deleted {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
