package utils

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"
)

// ParseExpiry converts a string (absolute ISO date or relative duration) into a time.Time
func ParseExpiry(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, nil
	}

	layouts := []string{
		time.RFC3339,          // 2026-01-02T15:04:05Z
		"2006-01-02 15:04:05", // 2026-01-02 15:04:05 (Space separator)
		"2006-01-02T15:04",    // 2026-01-02T15:04 (HTML datetime-local)
		"2006-01-02 15:04",    // 2026-01-02T15:04 (HTML datetime-local)
		"2006-01-02",          // 2026-01-02 (Date only)
	}

	for _, layout := range layouts {
		// If layout has no 'Z' or offset, use ParseInLocation
		var t time.Time
		var err error

		if strings.Contains(layout, "Z") || strings.Contains(layout, "-07") {
			t, err = time.Parse(layout, input)
		} else {
			t, err = time.ParseInLocation(layout, input, time.Local)
		}

		if err == nil {
			return t, nil
		}
	}

	// relative: days and weeks first, then time.ParseDuration units
	if daysStr, found := strings.CutSuffix(input, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err == nil {
			return time.Now().AddDate(0, 0, days), nil
		}
	}
	if weeksStr, found := strings.CutSuffix(input, "w"); found {
		days, err := strconv.Atoi(weeksStr)
		if err == nil {
			return time.Now().AddDate(0, 0, days*7), nil
		}
	}

	dur, err := time.ParseDuration(input)
	if err == nil {
		return time.Now().Add(dur), nil
	}

	return time.Time{}, fmt.Errorf("invalid expiry format: use duration (7d, 1h) or absolute time (ISO8601)")
}

// CleanPagePath normalizes a page path to the form used as storage key:
// a leading slash, no trailing slash, no dot segments and no query or
// fragment. The root page is "/".
func CleanPagePath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return path.Clean("/" + strings.TrimSpace(p))
}
