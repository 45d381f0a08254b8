// Package dates normalizes the date strings the regulators publish. Feeds
// use RFC-822 style stamps, listing pages use "22 Oct 2025" or "22/10/2025",
// and some articles only carry a date somewhere in the body text.
package dates

import (
	"regexp"
	"strings"
	"time"
)

// formats is tried in order; the first that parses wins. Offsets are
// discarded afterwards so instants from different sources compare as naive
// local times.
var formats = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2 January 2006",
	"2 Jan 2006",
	"02/01/2006",
	"2/1/2006",
}

// Parse converts a published string into a comparable instant. Unparsable
// input yields the zero time, which sorts after every real date.
func Parse(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	for _, layout := range formats {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		// Drop the zone so cross-source comparison is consistent.
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	}

	return time.Time{}
}

// Known reports whether Parse produced a real instant.
func Known(t time.Time) bool {
	return !t.IsZero()
}

type textPattern struct {
	re     *regexp.Regexp
	layout string
}

// patterns mirror the listing-page habits of the five regulators: written-out
// months first, then abbreviated, then numeric day-first, then ISO.
var patterns = []textPattern{
	{regexp.MustCompile(`\b(\d{1,2} (?:January|February|March|April|May|June|July|August|September|October|November|December) \d{4})\b`), "2 January 2006"},
	{regexp.MustCompile(`\b(\d{1,2} (?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec) \d{4})\b`), "2 Jan 2006"},
	{regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`), "2/1/2006"},
	{regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`), "2006-01-02"},
}

// ExtractFirst scans free text for the first date-like substring that
// actually parses. Used when a listing item has no structured date element.
func ExtractFirst(text string) (string, bool) {
	for _, p := range patterns {
		for _, match := range p.re.FindAllString(text, -1) {
			if _, err := time.Parse(p.layout, match); err == nil {
				return match, true
			}
		}
	}
	return "", false
}

// Display renders an instant for the dashboard, falling back to the original
// string (or "Unknown") when the date never parsed.
func Display(t time.Time, original string) string {
	if !Known(t) {
		if original == "" {
			return "Unknown"
		}
		return original
	}
	return t.Format("2 Jan 2006")
}
