package diarize

import (
	"regexp"
	"strings"

	"video-transcript/internal/app/timestamp"
	"video-transcript/internal/app/transcript"
)

// Span is one speaker-labeled interval returned by the identification
// service. Spans may overlap segment boundaries arbitrarily.
type Span struct {
	Start   float64
	End     float64
	Speaker string
}

// MergeSpans assigns speakers to segments by interval overlap: each segment
// gets the speaker whose span overlaps it the most, ties broken by the
// earliest-starting span. Segments no span touches stay unlabeled. The
// text, order and boundaries of the segments are never changed.
func MergeSpans(segments []transcript.Segment, spans []Span) []transcript.Segment {
	if len(spans) == 0 {
		return segments
	}

	out := make([]transcript.Segment, len(segments))
	copy(out, segments)

	for i := range out {
		best := -1
		bestOverlap := 0.0
		for j, span := range spans {
			o := overlap(out[i], span)
			if o <= 0 {
				continue
			}
			if o > bestOverlap || (o == bestOverlap && best >= 0 && span.Start < spans[best].Start) {
				best = j
				bestOverlap = o
			}
		}
		if best >= 0 {
			out[i].Speaker = spans[best].Speaker
		}
	}
	return out
}

func overlap(seg transcript.Segment, span Span) float64 {
	start := seg.Start
	if span.Start > start {
		start = span.Start
	}
	end := seg.End
	if span.End < end {
		end = span.End
	}
	return end - start
}

var spanLineRe = regexp.MustCompile(`^\[(\d{1,2}:\d{2}(?::\d{2})?)\]\s*([\w\s]+?):\s*(.*)$`)

// ParseSpeakerLines converts service output in the
// "[MM:SS] Speaker N: text" shape into ordered spans. Each span extends to
// the start of the next one; the final span is open-ended until streamEnd.
// Unparseable lines are skipped.
func ParseSpeakerLines(text string, streamEnd float64) []Span {
	var spans []Span
	for _, line := range strings.Split(text, "\n") {
		m := spanLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		spans = append(spans, Span{
			Start:   float64(timestamp.ParseTimestamp(m[1])),
			Speaker: strings.TrimSpace(m[2]),
		})
	}

	for i := range spans {
		if i+1 < len(spans) {
			spans[i].End = spans[i+1].Start
		} else {
			spans[i].End = streamEnd
		}
		if spans[i].End < spans[i].Start {
			spans[i].End = spans[i].Start
		}
	}
	return spans
}
