package segment

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Times are fractional seconds in source-media time. All spans are
// half-open [Start, End) with End > Start.

var ErrDegenerateSpan = errors.New("degenerate span")

// Span is a time interval in seconds.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (s Span) Duration() float64 { return s.End - s.Start }

func (s Span) Validate() error {
	if s.Start < 0 {
		return fmt.Errorf("span start %.6f is negative", s.Start)
	}
	if s.End <= s.Start {
		return fmt.Errorf("%w: %.6f-%.6f", ErrDegenerateSpan, s.Start, s.End)
	}
	return nil
}

// Overlaps reports whether the two spans share more than a boundary point.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Word is a spoken-word interval produced by transcription or by the
// interchange codec's caption parser. Immutable once created.
type Word struct {
	Span
	Text string `json:"text"`
}

// SilenceKind distinguishes analysis-reported long silences from short
// leftover gaps.
type SilenceKind string

const (
	// KindLong marks a silence whose duration met the configured
	// minimum-silence threshold.
	KindLong SilenceKind = "long"
	// KindGap marks a silent interval below the minimum-silence threshold,
	// including gaps synthesized by the timeline builder.
	KindGap SilenceKind = "gap"
)

func (k SilenceKind) Valid() bool { return k == KindLong || k == KindGap }

// Silence is a silent interval. Immutable once created.
type Silence struct {
	Span
	Kind SilenceKind `json:"kind"`
}

// Unified is the timeline's atomic unit. Exactly one of Word or Silence is
// set. The ID is assigned at timeline construction and never reused; it is
// what edit commands and selections address.
type Unified struct {
	ID      string   `json:"id"`
	Word    *Word    `json:"word,omitempty"`
	Silence *Silence `json:"silence,omitempty"`
	Deleted bool     `json:"deleted,omitempty"`
	Filler  bool     `json:"filler,omitempty"`
}

// NewID returns a fresh opaque segment identifier.
func NewID() string { return uuid.NewString() }

func NewWord(w Word) Unified       { return Unified{ID: NewID(), Word: &w} }
func NewSilence(s Silence) Unified { return Unified{ID: NewID(), Silence: &s} }

func (u Unified) IsWord() bool    { return u.Word != nil }
func (u Unified) IsSilence() bool { return u.Silence != nil }

// Span returns the segment's time interval regardless of payload variant.
func (u Unified) Span() Span {
	switch {
	case u.Word != nil:
		return u.Word.Span
	case u.Silence != nil:
		return u.Silence.Span
	}
	return Span{}
}

func (u Unified) Validate() error {
	if (u.Word == nil) == (u.Silence == nil) {
		return fmt.Errorf("segment %s: exactly one of word or silence must be set", u.ID)
	}
	if u.ID == "" {
		return errors.New("segment has no id")
	}
	if u.Silence != nil && !u.Silence.Kind.Valid() {
		return fmt.Errorf("segment %s: unknown silence kind %q", u.ID, u.Silence.Kind)
	}
	return u.Span().Validate()
}

// MediaRef describes the source media a project edits.
type MediaRef struct {
	Path     string  `json:"path"`
	Duration float64 `json:"duration"`
	FPS      float64 `json:"fps"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

func (m MediaRef) Validate() error {
	if m.Path == "" {
		return errors.New("media path is empty")
	}
	if m.Duration <= 0 {
		return fmt.Errorf("media duration %.6f must be positive", m.Duration)
	}
	if m.FPS <= 0 {
		return fmt.Errorf("media fps %.3f must be positive", m.FPS)
	}
	return nil
}
