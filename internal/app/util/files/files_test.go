package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "already safe", input: "transcript_abc123_captions.txt", expected: "transcript_abc123_captions.txt"},
		{name: "path traversal", input: "../../etc/passwd", expected: "etc_passwd"},
		{name: "spaces and symbols", input: "my video! (final).txt", expected: "my_video_final_.txt"},
		{name: "collapses repeats", input: "a___b..c--d", expected: "a_b.c-d"},
		{name: "trims edges", input: "__name__", expected: "name"},
		{name: "empty becomes unnamed", input: "", expected: "unnamed"},
		{name: "only unsafe becomes unnamed", input: "///", expected: "unnamed"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SanitizeFilename(tc.input))
		})
	}
}

func TestSanitizeFilenameBoundsLength(t *testing.T) {
	long := strings.Repeat("a", 300) + ".txt"
	safe := SanitizeFilename(long)
	assert.LessOrEqual(t, len(safe), 255)
	assert.True(t, strings.HasSuffix(safe, ".txt"))
}

func TestGetProjectRoot(t *testing.T) {
	root, err := GetProjectRoot()
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "go.mod"))
	assert.NoError(t, err)
}
