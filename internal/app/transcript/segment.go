package transcript

import (
	"strings"

	"video-transcript/internal/app/timestamp"
)

// Segment is one time-coded unit of text from either captions or
// speech-to-text. Speaker stays empty unless a diarization pass filled it in.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// Duration returns the covered span in seconds.
func (s Segment) Duration() float64 {
	if s.End <= s.Start {
		return 0
	}
	return s.End - s.Start
}

// Source identifies which acquisition stage produced a transcript.
type Source string

const (
	SourceCaptions Source = "captions"
	SourceAudio    Source = "audio"
)

// Serialize renders an ordered segment stream into the canonical wire text.
// Labeled segments become speaker lines ("[ts] Name: text"), unlabeled ones
// become plain lines with a leading timestamp token. Segments whose text is
// empty after trimming are skipped.
func Serialize(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(timestamp.FormatToken(int(seg.Start)))
		b.WriteByte(' ')
		if seg.Speaker != "" {
			b.WriteString(seg.Speaker)
			b.WriteString(": ")
		}
		b.WriteString(text)
	}
	return b.String()
}

// Normalize sorts out minor upstream sloppiness without re-ordering content:
// it drops empty segments and clamps each End to at least its Start. The
// relative order of the stream is preserved.
func Normalize(segments []Segment) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		if seg.End < seg.Start {
			seg.End = seg.Start
		}
		out = append(out, seg)
	}
	return out
}
