// Package coerce turns untyped cell text into numbers and timestamps.
// Every function here is total: a value that cannot be coerced reports ok=false
// (or a documented fallback) instead of an error.
package coerce

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Number parses s as a plain decimal or scientific number after trimming
// surrounding whitespace. NaN and infinities are rejected.
func Number(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NumberOrZero is Number with 0 substituted for anything non-numeric.
func NumberOrZero(s string) float64 {
	f, ok := Number(s)
	if !ok {
		return 0
	}
	return f
}

// zoned layouts carry their own offset; naive layouts are read as UTC.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04Z07:00",
		"2006-01-02T15:04Z07:00",
	}
	naiveLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
		"2006/01/02 15:04:05",
		"2006/01/02",
		"02.01.2006 15:04:05",
		"02.01.2006 15:04",
		"02.01.2006",
		"1/2/2006 15:04:05",
		"1/2/2006 15:04",
		"1/2/2006",
	}
)

// Timestamp parses s with the layouts found in platform exports. Column names
// arrive lower-cased, so the text is upper-cased first ("t" separator, "z"
// zone). Naive timestamps are interpreted in UTC.
func Timestamp(s string) (time.Time, bool) {
	raw := strings.ToUpper(strings.TrimSpace(s))
	if raw == "" {
		return time.Time{}, false
	}
	for _, l := range zonedLayouts {
		if t, err := time.Parse(l, raw); err == nil {
			return t, true
		}
	}
	for _, l := range naiveLayouts {
		if t, err := time.ParseInLocation(l, raw, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
