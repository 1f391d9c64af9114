package timeline

import "textcut/internal/segment"

// AutoCutIDs selects every long detected silence that is worth cutting under
// the current settings: duration at or above the minimum-silence threshold
// and a deletable window that survives the buffer on both sides. Already
// deleted segments are skipped so the resulting command captures only the
// change.
func (t *Timeline) AutoCutIDs(st segment.Settings) []string {
	var ids []string
	for _, s := range t.Segments {
		if !s.IsSilence() || s.Deleted {
			continue
		}
		sil := s.Silence
		if sil.Kind != segment.KindLong {
			continue
		}
		if sil.Duration() < st.MinSilenceSec {
			continue
		}
		if _, ok := deletableWindow(sil.Span, st.BufferSec); !ok {
			continue
		}
		ids = append(ids, s.ID)
	}
	return ids
}
