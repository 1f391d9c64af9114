// Package filler classifies word segments as disfluencies ("um", "uh", …)
// against a configurable lexicon and turns the matches into a bulk delete
// command.
package filler

import (
	"strings"

	"golang.org/x/text/cases"

	"textcut/internal/history"
	"textcut/internal/timeline"
)

// Two-tier defaults. Hard fillers are near-certain disfluencies; soft
// fillers are context-dependent and only cut when the caller opts in.
var (
	HardWords = []string{"um", "uh", "uhh", "umm", "hmm", "hm", "uh-huh", "mm"}
	SoftWords = []string{
		"like", "basically", "literally", "actually", "right",
		"okay", "so", "well", "just", "you know",
	}
)

const punctuation = ".,!?;:'\""

var fold = cases.Fold()

// Normalize lowercases (Unicode case folding) and strips surrounding
// punctuation and whitespace. Matching is whole-token only: "uma" never
// matches a lexicon entry "um".
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, punctuation)
	return fold.String(s)
}

// Lexicon is a set of normalized filler tokens.
type Lexicon map[string]struct{}

func NewLexicon(words ...string) Lexicon {
	lex := make(Lexicon, len(words))
	for _, w := range words {
		if n := Normalize(w); n != "" {
			lex[n] = struct{}{}
		}
	}
	return lex
}

func (l Lexicon) Contains(word string) bool {
	_, ok := l[Normalize(word)]
	return ok
}

// Scan marks every word segment whose normalized text matches the lexicon
// and returns the matched ids as a delete command ready for the edit
// history. Re-running after further edits is idempotent: flags are recomputed
// for the whole timeline and already-deleted matches stay in the result set.
func Scan(t *timeline.Timeline, lex Lexicon) history.Command {
	var ids []string
	for i := range t.Segments {
		s := &t.Segments[i]
		switch {
		case s.IsWord():
			match := lex.Contains(s.Word.Text)
			s.Filler = match
			if match {
				ids = append(ids, s.ID)
			}
		case s.IsSilence():
			s.Filler = false
		}
	}
	return history.Delete(ids...)
}
