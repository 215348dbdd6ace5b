// Package format parses the canonical transcript text back into structured,
// renderable lines. It is the client half of the wire contract: whatever the
// acquisition pipeline serializes, this parser must reconstruct the same line
// sequence on every run.
package format

import (
	"regexp"
	"strings"

	"github.com/samber/lo"

	"video-transcript/internal/app/timestamp"
)

// MaxColors is the size of the speaker color palette. Color indices wrap
// once more distinct speakers appear, so collisions past eight speakers
// are expected.
const MaxColors = 8

// LineType distinguishes speaker-attributed lines from free text.
type LineType string

const (
	LineSpeaker LineType = "speaker"
	LineRegular LineType = "regular"
)

// SpanType labels the pieces of a regular line.
type SpanType string

const (
	SpanText      SpanType = "text"
	SpanTimestamp SpanType = "timestamp"
)

// Span is one renderable chunk of a regular line. Timestamp spans are
// clickable seek targets; Seconds is only meaningful for those.
type Span struct {
	Type    SpanType `json:"type"`
	Text    string   `json:"text"`
	Seconds int      `json:"seconds,omitempty"`
}

// Line is one parsed transcript line. IDs are positional within a single
// parse; gaps from dropped blank lines are fine.
type Line struct {
	ID          int      `json:"id"`
	Type        LineType `json:"type"`
	Timestamp   string   `json:"timestamp,omitempty"`
	Seconds     int      `json:"seconds,omitempty"`
	SpeakerName string   `json:"speaker_name,omitempty"`
	Content     string   `json:"content"`
	ColorID     int      `json:"color_id,omitempty"`
	Spans       []Span   `json:"spans,omitempty"`
}

var (
	speakerLinePattern = regexp.MustCompile(`^(\[\d{1,2}:\d{2}(?::\d{2})?\])\s*((?i:Speaker \d+)|[\w\s]+):(.*)$`)
	timestampPattern   = regexp.MustCompile(`\[\d{1,2}:\d{2}(?::\d{2})?\]`)
)

// ColorMap assigns each speaker a palette index in first-seen order. It is
// scoped to one transcript: a new parse starts with a fresh map, so color
// assignments never leak between transcripts.
type ColorMap struct {
	byName map[string]int
}

// NewColorMap returns an empty speaker palette.
func NewColorMap() *ColorMap {
	return &ColorMap{byName: make(map[string]int)}
}

// Assign returns the color index for name, allocating the next palette
// slot on first sight. The same name always gets the same index within
// one map's lifetime.
func (m *ColorMap) Assign(name string) int {
	if id, ok := m.byName[name]; ok {
		return id
	}
	id := (len(m.byName) % MaxColors) + 1
	m.byName[name] = id
	return id
}

// Parse splits canonical transcript text into formatted lines. Lines that
// match the speaker grammar become speaker lines with a stable color;
// everything else degrades to a regular line whose inline timestamp tokens
// become clickable spans. Malformed input never fails the parse, it just
// renders as plain text.
func Parse(text string) []Line {
	colors := NewColorMap()
	raw := lo.Filter(strings.Split(text, "\n"), func(line string, _ int) bool {
		return strings.TrimSpace(line) != ""
	})

	lines := make([]Line, 0, len(raw))
	for i, line := range raw {
		if match := speakerLinePattern.FindStringSubmatch(line); match != nil {
			content := strings.TrimSpace(match[3])
			if content == "" {
				continue
			}
			speaker := strings.TrimSpace(match[2])
			lines = append(lines, Line{
				ID:          i,
				Type:        LineSpeaker,
				Timestamp:   match[1],
				Seconds:     timestamp.ParseTimestamp(match[1]),
				SpeakerName: speaker,
				Content:     content,
				ColorID:     colors.Assign(speaker),
			})
			continue
		}

		lines = append(lines, Line{
			ID:      i,
			Type:    LineRegular,
			Content: strings.TrimSpace(line),
			Spans:   splitSpans(strings.TrimSpace(line)),
		})
	}
	return lines
}

// splitSpans interleaves plain text with the timestamp tokens found inside
// a regular line.
func splitSpans(line string) []Span {
	matches := timestampPattern.FindAllStringIndex(line, -1)
	if len(matches) == 0 {
		return []Span{{Type: SpanText, Text: line}}
	}

	var spans []Span
	cursor := 0
	for _, m := range matches {
		if m[0] > cursor {
			spans = append(spans, Span{Type: SpanText, Text: line[cursor:m[0]]})
		}
		token := line[m[0]:m[1]]
		spans = append(spans, Span{
			Type:    SpanTimestamp,
			Text:    token,
			Seconds: timestamp.ParseTimestamp(token),
		})
		cursor = m[1]
	}
	if cursor < len(line) {
		spans = append(spans, Span{Type: SpanText, Text: line[cursor:]})
	}
	return spans
}
