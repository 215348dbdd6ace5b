package video

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVideoID(t *testing.T) {
	testCases := []struct {
		name     string
		url      string
		expected string
	}{
		{name: "watch URL", url: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", expected: "dQw4w9WgXcQ"},
		{name: "short URL", url: "https://youtu.be/dQw4w9WgXcQ", expected: "dQw4w9WgXcQ"},
		{name: "embed URL", url: "https://www.youtube.com/embed/dQw4w9WgXcQ", expected: "dQw4w9WgXcQ"},
		{name: "no scheme", url: "youtube.com/watch?v=abc_-123XYZ", expected: "abc_-123XYZ"},
		{name: "id with dash and underscore", url: "https://youtu.be/a-b_c", expected: "a-b_c"},
		{name: "unrelated URL", url: "https://example.com/watch?v=abc", expected: ""},
		{name: "empty", url: "", expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExtractVideoID(tc.url))
		})
	}
}

func TestValidateWatchURL(t *testing.T) {
	valid := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"http://youtube.com/watch?v=abc",
		"youtu.be/abc",
		"www.youtube.com/embed/abc",
	}
	for _, url := range valid {
		assert.NoError(t, ValidateWatchURL(url), url)
	}

	invalid := []string{
		"",
		"   ",
		"https://vimeo.com/12345",
		"not a url at all",
	}
	for _, url := range invalid {
		assert.Error(t, ValidateWatchURL(url), url)
	}
}

func TestParseWatchPage(t *testing.T) {
	html := `<html><head>
		<meta property="og:title" content="A Test Video">
		<meta itemprop="duration" content="PT1H2M3S">
	</head><body></body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	title, duration, err := ParseWatchPage(doc)
	require.NoError(t, err)
	assert.Equal(t, "A Test Video", title)
	assert.Equal(t, 3723, duration)
}

func TestParseWatchPageMissingMetadata(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><head></head></html>"))
	require.NoError(t, err)

	_, _, err = ParseWatchPage(doc)
	assert.Error(t, err)
}

func TestParseISODuration(t *testing.T) {
	testCases := []struct {
		raw      string
		expected int
	}{
		{"PT4M13S", 253},
		{"PT1H", 3600},
		{"PT45S", 45},
		{"PT1H0M5S", 3605},
		{"garbage", 0},
		{"", 0},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, parseISODuration(tc.raw), tc.raw)
	}
}
