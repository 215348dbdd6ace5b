package files

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// GetProjectRoot walks up from this source file until it finds go.mod.
func GetProjectRoot() (string, error) {
	_, filename, _, _ := runtime.Caller(0)
	return findGoModRoot(filename)
}

var (
	unsafeChars    = regexp.MustCompile(`[^a-zA-Z0-9_\-.]`)
	repeatedUnder  = regexp.MustCompile(`_{2,}`)
	repeatedDots   = regexp.MustCompile(`\.{2,}`)
	repeatedDashes = regexp.MustCompile(`-{2,}`)
)

// SanitizeFilename whitelists filename characters to prevent path
// traversal, collapses repeats and bounds the length.
func SanitizeFilename(filename string) string {
	safe := unsafeChars.ReplaceAllString(filename, "_")
	safe = repeatedUnder.ReplaceAllString(safe, "_")
	safe = repeatedDots.ReplaceAllString(safe, ".")
	safe = repeatedDashes.ReplaceAllString(safe, "-")
	safe = strings.Trim(safe, "._- ")

	if len(safe) > 255 {
		ext := filepath.Ext(safe)
		safe = safe[:255-len(ext)] + ext
	}

	if safe == "" {
		return "unnamed"
	}
	return safe
}

func findGoModRoot(path string) (string, error) {
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			return path, nil
		}
		newPath := filepath.Dir(path)
		if newPath == path {
			return "", fmt.Errorf("go.mod not found")
		}
		path = newPath
	}
}
