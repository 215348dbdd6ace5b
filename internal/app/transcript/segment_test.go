package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerialize(t *testing.T) {
	testCases := []struct {
		name     string
		segments []Segment
		expected string
	}{
		{
			name:     "empty stream",
			segments: nil,
			expected: "",
		},
		{
			name: "plain lines",
			segments: []Segment{
				{Start: 0, End: 4.2, Text: "welcome back"},
				{Start: 65, End: 70, Text: "to the show"},
			},
			expected: "[00:00] welcome back\n[01:05] to the show",
		},
		{
			name: "speaker lines",
			segments: []Segment{
				{Start: 65, End: 70, Text: "Hello there", Speaker: "Speaker 1"},
				{Start: 70, End: 74, Text: "Hi back", Speaker: "Speaker 2"},
			},
			expected: "[01:05] Speaker 1: Hello there\n[01:10] Speaker 2: Hi back",
		},
		{
			name: "blank text skipped",
			segments: []Segment{
				{Start: 0, End: 1, Text: "   "},
				{Start: 2, End: 3, Text: "kept"},
			},
			expected: "[00:02] kept",
		},
		{
			name: "hour boundary",
			segments: []Segment{
				{Start: 3600, End: 3605, Text: "an hour in"},
			},
			expected: "[1:00:00] an hour in",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Serialize(tc.segments))
		})
	}
}

func TestNormalize(t *testing.T) {
	in := []Segment{
		{Start: 0, End: 2, Text: "first"},
		{Start: 3, End: 1, Text: "inverted end"},
		{Start: 5, End: 6, Text: ""},
		{Start: 7, End: 9, Text: "last"},
	}

	out := Normalize(in)

	assert.Len(t, out, 3)
	assert.Equal(t, "first", out[0].Text)
	assert.Equal(t, 3.0, out[1].End, "inverted end clamps to start")
	assert.Equal(t, "last", out[2].Text)
}

func TestSegmentDuration(t *testing.T) {
	assert.Equal(t, 2.5, Segment{Start: 1, End: 3.5}.Duration())
	assert.Equal(t, 0.0, Segment{Start: 3, End: 1}.Duration())
}
