// Package transcript loads the two collaborator inputs: word intervals from a
// whisper-style transcription JSON and silence intervals from an audio
// analysis JSON. Both arrive pre-sorted in principle; the timeline builder
// still validates ordering and overlap.
package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"textcut/internal/segment"
)

type wordJSON struct {
	Word  string  `json:"word"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type segmentJSON struct {
	Words []wordJSON `json:"words"`
}

type transcriptJSON struct {
	Words    []wordJSON    `json:"words"`
	Segments []segmentJSON `json:"segments"`
}

// ParseWords reads a transcription document. Both the whisper.cpp shape
// (segments carrying word lists) and a flat top-level word list are accepted.
func ParseWords(r io.Reader) ([]segment.Word, error) {
	var doc transcriptJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}

	raw := doc.Words
	for _, s := range doc.Segments {
		raw = append(raw, s.Words...)
	}

	var words []segment.Word
	for _, w := range raw {
		text := strings.TrimSpace(w.Word)
		if text == "" {
			text = strings.TrimSpace(w.Text)
		}
		if text == "" || w.End <= w.Start {
			continue
		}
		words = append(words, segment.Word{
			Span: segment.Span{Start: w.Start, End: w.End},
			Text: text,
		})
	}
	sort.SliceStable(words, func(i, j int) bool { return words[i].Start < words[j].Start })
	return words, nil
}

// LoadWords reads a transcription document from disk.
func LoadWords(path string) ([]segment.Word, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()
	return ParseWords(f)
}

type silenceJSON struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// ParseSilences reads silence detections and classifies each as Long or Gap
// against minSilence, the project's minimum-silence threshold in seconds.
// A bare array and a {"silences": [...]} wrapper are both accepted.
func ParseSilences(r io.Reader, minSilence float64) ([]segment.Silence, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read silences: %w", err)
	}

	var raw []silenceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		var wrapped struct {
			Silences []silenceJSON `json:"silences"`
		}
		if werr := json.Unmarshal(data, &wrapped); werr != nil {
			return nil, fmt.Errorf("parse silences: %w", err)
		}
		raw = wrapped.Silences
	}

	var silences []segment.Silence
	for _, s := range raw {
		if s.End <= s.Start {
			continue
		}
		kind := segment.KindGap
		if s.End-s.Start >= minSilence {
			kind = segment.KindLong
		}
		silences = append(silences, segment.Silence{
			Span: segment.Span{Start: s.Start, End: s.End},
			Kind: kind,
		})
	}
	sort.SliceStable(silences, func(i, j int) bool { return silences[i].Start < silences[j].Start })
	return silences, nil
}

// LoadSilences reads silence detections from disk.
func LoadSilences(path string, minSilence float64) ([]segment.Silence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open silences: %w", err)
	}
	defer f.Close()
	return ParseSilences(f, minSilence)
}
