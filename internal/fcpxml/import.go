// Package fcpxml reads and writes the Final Cut Pro XML interchange format.
// Word timing is carried by caption elements with rational time values; the
// codec keeps the full document tree so everything it does not model survives
// an import/export cycle untouched.
package fcpxml

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"textcut/internal/fcpxml/xmltree"
	"textcut/internal/rational"
	"textcut/internal/segment"
)

// FormatError is a malformed or unusable interchange document. An import that
// fails with it produces no project state.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fcpxml: %s: %v", e.Reason, e.Err)
	}
	return "fcpxml: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

func formatErrf(err error, format string, args ...any) *FormatError {
	return &FormatError{Reason: fmt.Sprintf(format, args...), Err: err}
}

const (
	defaultFPS    = 25.0
	defaultWidth  = 1920
	defaultHeight = 1080

	// Timescale for re-emitted caption times. Matches the audio sample rate
	// convention so caption boundaries stay well under one frame of error.
	captionTimescale = 44100
)

// Document is a parsed interchange project: the extracted word timing plus
// the retained tree for pass-through export.
type Document struct {
	Version       string
	AssetID       string
	FormatID      string
	MediaPath     string
	Duration      float64
	FrameDuration rational.Rational
	FPS           float64
	Width         int
	Height        int
	Words         []segment.Word

	tree *xmltree.Document
}

// ParseFile parses the document at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fcpxml: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a complete FCPXML document.
func Parse(r io.Reader) (*Document, error) {
	tree, err := xmltree.Parse(r)
	if err != nil {
		return nil, formatErrf(err, "invalid xml")
	}
	root := tree.Root()
	if root.Name != "fcpxml" {
		return nil, formatErrf(nil, "root element is <%s>, want <fcpxml>", root.Name)
	}

	d := &Document{
		Version:       root.AttrDefault("version", "1.11"),
		FPS:           defaultFPS,
		Width:         defaultWidth,
		Height:        defaultHeight,
		FrameDuration: rational.Rational{Num: 1, Den: 25},
		tree:          tree,
	}

	resources := root.First("resources")
	if resources == nil {
		return nil, formatErrf(nil, "no <resources> section")
	}
	if err := d.parseAsset(resources); err != nil {
		return nil, err
	}
	if err := d.parseFormat(resources); err != nil {
		return nil, err
	}

	if seq := root.First("sequence"); seq != nil {
		if v, ok := seq.Attr("duration"); ok {
			r, err := rational.Parse(v)
			if err != nil {
				return nil, formatErrf(err, "sequence duration %q", v)
			}
			d.Duration = r.Seconds()
		}
	}

	if err := d.parseCaptions(root); err != nil {
		return nil, err
	}
	if d.Duration == 0 {
		for _, w := range d.Words {
			if w.End > d.Duration {
				d.Duration = w.End
			}
		}
	}
	return d, nil
}

// parseAsset picks the first audible or visible asset: its id anchors the
// exported clip references and its media-rep locates the source file.
func (d *Document) parseAsset(resources *xmltree.Element) error {
	for _, asset := range resources.FindAll("asset") {
		if asset.AttrDefault("hasVideo", "0") != "1" && asset.AttrDefault("hasAudio", "1") != "1" {
			continue
		}
		d.AssetID = asset.AttrDefault("id", "r2")
		if v, ok := asset.Attr("duration"); ok {
			r, err := rational.Parse(v)
			if err != nil {
				return formatErrf(err, "asset duration %q", v)
			}
			d.Duration = r.Seconds()
		}
		d.FormatID = asset.AttrDefault("format", "")
		if rep := asset.First("media-rep"); rep != nil {
			d.MediaPath = mediaPath(rep.AttrDefault("src", ""))
		}
		return nil
	}
	return nil
}

func (d *Document) parseFormat(resources *xmltree.Element) error {
	formats := resources.FindAll("format")
	if len(formats) == 0 {
		return nil
	}
	chosen := formats[0]
	if d.FormatID != "" {
		for _, f := range formats {
			if f.AttrDefault("id", "") == d.FormatID {
				chosen = f
				break
			}
		}
	}
	d.FormatID = chosen.AttrDefault("id", d.FormatID)
	if v, ok := chosen.Attr("width"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			d.Width = n
		}
	}
	if v, ok := chosen.Attr("height"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			d.Height = n
		}
	}
	if v, ok := chosen.Attr("frameDuration"); ok {
		fd, err := rational.Parse(v)
		if err != nil || fd.Num <= 0 {
			return formatErrf(err, "frameDuration %q", v)
		}
		d.FrameDuration = fd
		d.FPS = 1 / fd.Seconds()
	}
	return nil
}

// parseCaptions extracts every caption's rational offset/duration into word
// segments. Offset and duration are mandatory; a zero duration is skipped
// rather than rejected, matching captions some tools emit as markers.
func (d *Document) parseCaptions(root *xmltree.Element) error {
	for _, c := range root.FindAll("caption") {
		offAttr, ok := c.Attr("offset")
		if !ok {
			return formatErrf(nil, "caption missing offset attribute")
		}
		durAttr, ok := c.Attr("duration")
		if !ok {
			return formatErrf(nil, "caption missing duration attribute")
		}
		off, err := rational.Parse(offAttr)
		if err != nil {
			return formatErrf(err, "caption offset %q", offAttr)
		}
		dur, err := rational.Parse(durAttr)
		if err != nil {
			return formatErrf(err, "caption duration %q", durAttr)
		}
		if dur.IsZero() {
			continue
		}

		text := captionText(c)
		if text == "" {
			continue
		}
		end := off.Add(dur)
		d.Words = append(d.Words, segment.Word{
			Span: segment.Span{Start: off.Seconds(), End: end.Seconds()},
			Text: text,
		})
	}
	sort.SliceStable(d.Words, func(i, j int) bool {
		return d.Words[i].Start < d.Words[j].Start
	})
	return nil
}

func captionText(c *xmltree.Element) string {
	var parts []string
	for _, t := range c.FindAll("text") {
		if s := strings.Join(strings.Fields(t.InnerText()), " "); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		if name, ok := c.Attr("name"); ok {
			return strings.Join(strings.Fields(name), " ")
		}
		return ""
	}
	return strings.Join(parts, " ")
}

// mediaPath turns a media-rep src into a filesystem path. file:// URLs are
// unwrapped; anything else passes through verbatim.
func mediaPath(src string) string {
	if src == "" {
		return ""
	}
	if u, err := url.Parse(src); err == nil && u.Scheme == "file" {
		if u.Path != "" {
			return u.Path
		}
	}
	return src
}

// Media returns the document's media metadata in model form.
func (d *Document) Media() segment.MediaRef {
	return segment.MediaRef{
		Path:     d.MediaPath,
		Duration: d.Duration,
		FPS:      d.FPS,
		Width:    d.Width,
		Height:   d.Height,
	}
}
