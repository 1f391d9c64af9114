package timeline

import (
	"fmt"

	"textcut/internal/segment"
)

// minSynthGap is the smallest residual interval worth its own synthesized
// gap segment. Anything narrower is encoder slack; the preceding segment is
// extended to close the seam, matching how the transcriber treats sub-10ms
// word gaps.
const minSynthGap = 1e-6

// OverlapError reports two input intervals that overlap in time. Inputs are
// assumed independently validated, but the builder checks defensively and
// never silently repairs.
type OverlapError struct {
	AKind string
	A     segment.Span
	BKind string
	B     segment.Span
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%s %.6f-%.6f overlaps %s %.6f-%.6f",
		e.AKind, e.A.Start, e.A.End, e.BKind, e.B.Start, e.B.End)
}

// Build merges the two time-ordered input sequences into one unified
// timeline covering [0, mediaDuration] exactly. Residual sub-intervals that
// neither source reported, including leading and trailing stretches, become
// synthesized Gap silences. Every segment receives a fresh stable id.
func Build(words []segment.Word, silences []segment.Silence, mediaDuration float64) (*Timeline, error) {
	if mediaDuration <= 0 {
		return nil, fmt.Errorf("media duration %.6f must be positive", mediaDuration)
	}
	if err := checkWordOrder(words); err != nil {
		return nil, err
	}
	if err := checkSilenceOrder(silences); err != nil {
		return nil, err
	}

	var out []segment.Unified
	cursor := 0.0
	wi, si := 0, 0

	place := func(u segment.Unified, kind string) error {
		sp := u.Span()
		if sp.End > mediaDuration+boundarySlack {
			return fmt.Errorf("%s %.6f-%.6f exceeds media duration %.6f", kind, sp.Start, sp.End, mediaDuration)
		}
		switch {
		case sp.Start < cursor-boundarySlack:
			prev := out[len(out)-1]
			return &OverlapError{AKind: segKind(prev), A: prev.Span(), BKind: kind, B: sp}
		case sp.Start-cursor >= minSynthGap:
			gap := segment.NewSilence(segment.Silence{
				Span: segment.Span{Start: cursor, End: sp.Start},
				Kind: segment.KindGap,
			})
			out = append(out, gap)
		case sp.Start != cursor && len(out) > 0:
			// Sub-microsecond seam: extend the previous segment to close it.
			extendEnd(&out[len(out)-1], sp.Start)
		case sp.Start != cursor:
			// Seam at the timeline head with nothing to extend: pull the
			// segment back to zero.
			setStart(&u, 0)
		}
		out = append(out, u)
		cursor = u.Span().End
		return nil
	}

	for wi < len(words) || si < len(silences) {
		takeWord := false
		switch {
		case si >= len(silences):
			takeWord = true
		case wi >= len(words):
			takeWord = false
		case words[wi].Start < silences[si].Start:
			takeWord = true
		case silences[si].Start < words[wi].Start:
			takeWord = false
		default:
			// Equal starts: both have positive length, so they overlap.
			return nil, &OverlapError{AKind: "silence", A: silences[si].Span, BKind: "word", B: words[wi].Span}
		}

		if takeWord {
			w := words[wi]
			wi++
			if err := place(segment.NewWord(w), "word"); err != nil {
				return nil, err
			}
		} else {
			s := silences[si]
			si++
			if !s.Kind.Valid() {
				return nil, fmt.Errorf("silence %.6f-%.6f: unknown kind %q", s.Start, s.End, s.Kind)
			}
			if err := place(segment.NewSilence(s), "silence"); err != nil {
				return nil, err
			}
		}
	}

	// Trailing coverage up to the media duration.
	switch {
	case mediaDuration-cursor >= minSynthGap:
		out = append(out, segment.NewSilence(segment.Silence{
			Span: segment.Span{Start: cursor, End: mediaDuration},
			Kind: segment.KindGap,
		}))
	case cursor != mediaDuration && len(out) > 0:
		extendEnd(&out[len(out)-1], mediaDuration)
	case len(out) == 0:
		// No inputs at all: the whole clip is one gap.
		out = append(out, segment.NewSilence(segment.Silence{
			Span: segment.Span{Start: 0, End: mediaDuration},
			Kind: segment.KindGap,
		}))
	}

	return FromSegments(mediaDuration, out)
}

func checkWordOrder(words []segment.Word) error {
	for i, w := range words {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("word %d %q: %w", i, w.Text, err)
		}
		if i > 0 && words[i-1].Overlaps(w.Span) {
			return &OverlapError{AKind: "word", A: words[i-1].Span, BKind: "word", B: w.Span}
		}
		if i > 0 && w.Start < words[i-1].Start {
			return fmt.Errorf("word %d %q: sequence not ordered by start time", i, w.Text)
		}
	}
	return nil
}

func checkSilenceOrder(silences []segment.Silence) error {
	for i, s := range silences {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("silence %d: %w", i, err)
		}
		if i > 0 && silences[i-1].Overlaps(s.Span) {
			return &OverlapError{AKind: "silence", A: silences[i-1].Span, BKind: "silence", B: s.Span}
		}
		if i > 0 && s.Start < silences[i-1].Start {
			return fmt.Errorf("silence %d: sequence not ordered by start time", i)
		}
	}
	return nil
}

func segKind(u segment.Unified) string {
	if u.IsWord() {
		return "word"
	}
	return "silence"
}

func extendEnd(u *segment.Unified, end float64) {
	switch {
	case u.Word != nil:
		u.Word.End = end
	case u.Silence != nil:
		u.Silence.End = end
	}
}

func setStart(u *segment.Unified, start float64) {
	switch {
	case u.Word != nil:
		u.Word.Start = start
	case u.Silence != nil:
		u.Silence.Start = start
	}
}
