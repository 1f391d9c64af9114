package fcpxml

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"

	"textcut/internal/export"
	"textcut/internal/fcpxml/xmltree"
	"textcut/internal/rational"
	"textcut/internal/timeline"
)

// ErrDurationMismatch aborts an export whose frame-snapped clip durations
// drift more than one frame from the planned kept-range total.
var ErrDurationMismatch = errors.New("fcpxml: exported duration drifts more than one frame from plan")

// Export rewrites the retained document for the edited timeline: the spine is
// replaced by one clip reference per kept range, with source in/out points in
// original media time and record offsets accumulated over prior ranges. Words
// that survive the cut are re-attached as captions at their edited position.
// The original tree is left untouched; the result is an independent copy.
func (d *Document) Export(tl *timeline.Timeline, ranges []export.KeptRange) (*xmltree.Document, error) {
	if len(ranges) == 0 {
		return nil, export.ErrEmptyPlan
	}
	fd := d.FrameDuration
	if fd.Num <= 0 || fd.Den <= 0 {
		fd = rational.Rational{Num: 1, Den: 25}
	}

	out := d.tree.Clone()
	seq := out.Root().First("sequence")
	if seq == nil {
		return nil, formatErrf(nil, "no <sequence> to rewrite")
	}
	spine := seq.First("spine")
	if spine == nil {
		return nil, formatErrf(nil, "no <spine> to rewrite")
	}

	clips := make([]*xmltree.Element, 0, len(ranges))
	recFrames := make([]int64, 0, len(ranges)) // record-in per emitted clip
	var cursor int64
	for i, r := range ranges {
		nframes := frames(r.End-r.Start, fd)
		if nframes == 0 {
			// Shorter than half a frame; nothing representable survives.
			continue
		}
		clip := &xmltree.Element{Name: "asset-clip"}
		clip.SetAttr("ref", d.AssetID)
		clip.SetAttr("name", clipName(d.MediaPath, i+1))
		clip.SetAttr("offset", fd.MulInt(cursor).String())
		clip.SetAttr("start", fd.MulInt(frames(r.Start, fd)).String())
		clip.SetAttr("duration", fd.MulInt(nframes).String())
		if d.FormatID != "" {
			clip.SetAttr("format", d.FormatID)
		}
		clip.SetAttr("tcFormat", "NDF")
		clips = append(clips, clip)
		recFrames = append(recFrames, cursor)
		cursor += nframes
	}
	if len(clips) == 0 {
		return nil, export.ErrEmptyPlan
	}

	exported := fd.MulInt(cursor).Seconds()
	if math.Abs(exported-export.TotalDuration(ranges)) > fd.Seconds() {
		return nil, ErrDurationMismatch
	}

	if tl != nil {
		attachCaptions(tl, ranges, clips, recFrames, fd)
	}

	spine.Children = nil
	for _, clip := range clips {
		spine.AppendChild(xmltree.Text("\n"))
		spine.AppendChild(clip)
	}
	spine.AppendChild(xmltree.Text("\n"))

	seq.SetAttr("duration", fd.MulInt(cursor).String())
	return out, nil
}

// WriteExport runs Export and serializes the result.
func (d *Document) WriteExport(w io.Writer, tl *timeline.Timeline, ranges []export.KeptRange) error {
	doc, err := d.Export(tl, ranges)
	if err != nil {
		return err
	}
	return doc.WriteTo(w)
}

// attachCaptions maps every surviving word into record time and nests it as a
// caption under the clip covering it. Caption boundaries keep sub-frame
// precision; only clip boundaries are frame-snapped.
func attachCaptions(tl *timeline.Timeline, ranges []export.KeptRange, clips []*xmltree.Element, recFrames []int64, fd rational.Rational) {
	// Record-in of each range in plan order, counting only emitted clips.
	clipIdx := make(map[int]int, len(clips))
	n := 0
	for i, r := range ranges {
		if frames(r.End-r.Start, fd) == 0 {
			continue
		}
		clipIdx[i] = n
		n++
	}

	for _, seg := range tl.Segments {
		if !seg.IsWord() || seg.Deleted {
			continue
		}
		w := seg.Word
		for i, r := range ranges {
			ci, ok := clipIdx[i]
			if !ok || w.Start < r.Start || w.Start >= r.End {
				continue
			}
			recIn := fd.MulInt(recFrames[ci]).Seconds() + (w.Start - r.Start)
			dur := math.Min(w.End, r.End) - w.Start
			if dur <= 0 {
				break
			}
			c := &xmltree.Element{Name: "caption"}
			c.SetAttr("offset", rational.FromSeconds(recIn, captionTimescale).String())
			c.SetAttr("duration", rational.FromSeconds(dur, captionTimescale).String())
			c.SetAttr("name", w.Text)
			text := &xmltree.Element{Name: "text"}
			text.AppendChild(xmltree.Text(w.Text))
			c.AppendChild(text)
			clips[ci].AppendChild(xmltree.Text("\n"))
			clips[ci].AppendChild(c)
			break
		}
	}
}

// frames converts a duration in seconds to a whole frame count at the given
// frame duration, rounding to the nearest frame.
func frames(sec float64, fd rational.Rational) int64 {
	return int64(math.Round(sec * float64(fd.Den) / float64(fd.Num)))
}

func clipName(mediaPath string, n int) string {
	base := "clip"
	if mediaPath != "" {
		base = filepath.Base(mediaPath)
	}
	return fmt.Sprintf("%s #%d", base, n)
}
