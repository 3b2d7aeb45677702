// Package dateparse turns the wildly inconsistent date strings found in
// feeds and scraped pages into a canonical calendar date. Precision below
// one day is not needed anywhere downstream, so timezone information is
// deliberately discarded.
package dateparse

import (
	"strings"
	"time"
)

// Layout is the canonical calendar date form used across the store.
const Layout = "2006-01-02"

// Ordered list of layouts tried against the (marker-stripped) raw string.
// First successful parse wins.
var layouts = []string{
	time.RFC1123Z,                // Mon, 02 Jan 2006 15:04:05 -0700
	time.RFC1123,                 // Mon, 02 Jan 2006 15:04:05 MST
	"Mon, 2 Jan 2006 15:04:05",   // RFC-2822 style without zone
	"Mon, 2 Jan 2006",            // date-only RFC-2822 style
	time.RFC3339,                 // 2006-01-02T15:04:05Z07:00
	"2006-01-02T15:04:05.999999", // ISO-8601 fractional seconds, no zone
	"2006-01-02T15:04:05",        // ISO-8601 without zone
	"2006-01-02 15:04:05",
	Layout, // plain YYYY-MM-DD
	"02 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Trailing timezone markers stripped before matching, so that the
// timezone-free layouts above still get a chance.
var tzSuffixes = []string{"Z", "UTC", "GMT", "EST", "EDT", "PST", "PDT", "CET", "CEST"}

// Parse tries every known layout against raw and reports whether any
// matched. On failure the current time is returned so callers that do not
// care about the distinction can use the value directly.
func Parse(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Now(), false
	}

	for _, candidate := range []string{s, stripZone(s)} {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t, true
			}
		}
	}

	return time.Now(), false
}

// ParseOrNow is the never-fails variant of Parse.
func ParseOrNow(raw string) time.Time {
	t, _ := Parse(raw)
	return t
}

// Canonical formats t as YYYY-MM-DD. Parse(Canonical(t)) round-trips to the
// same calendar date.
func Canonical(t time.Time) string {
	return t.Format(Layout)
}

// stripZone removes a trailing zulu/timezone marker or numeric offset.
func stripZone(s string) string {
	for _, suf := range tzSuffixes {
		if strings.HasSuffix(s, suf) {
			return strings.TrimSpace(strings.TrimSuffix(s, suf))
		}
	}
	// Numeric offsets like "+0000" or "-07:00".
	if i := strings.LastIndexAny(s, "+-"); i > 10 {
		rest := s[i+1:]
		if len(rest) >= 4 && len(rest) <= 6 {
			digits := strings.ReplaceAll(rest, ":", "")
			allDigits := true
			for _, r := range digits {
				if r < '0' || r > '9' {
					allDigits = false
					break
				}
			}
			if allDigits {
				return strings.TrimSpace(s[:i])
			}
		}
	}
	return s
}
