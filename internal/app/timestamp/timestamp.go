package timestamp

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTimestamp converts a "MM:SS" or "HH:MM:SS" token into seconds.
// Surrounding brackets are stripped first. Malformed tokens (empty,
// non-numeric, wrong number of segments) resolve to 0 so a bad token
// renders as a dead timestamp instead of failing the whole line.
func ParseTimestamp(token string) int {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, "[")
	token = strings.TrimSuffix(token, "]")
	if token == "" {
		return 0
	}

	parts := strings.Split(token, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// FormatSeconds converts seconds into "MM:SS", or "H:MM:SS" when the
// value reaches an hour or forceHours is set. Minutes and seconds are
// zero-padded to two digits.
func FormatSeconds(seconds int, forceHours bool) string {
	if seconds < 0 {
		seconds = 0
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 || forceHours {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// FormatToken is FormatSeconds wrapped in the bracketed wire form, e.g. "[03:25]".
func FormatToken(seconds int) string {
	return "[" + FormatSeconds(seconds, false) + "]"
}
