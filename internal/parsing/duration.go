package parsing

import (
	"regexp"
	"strings"
	"time"
)

// DefaultFallbackDays applies when neither dates nor phrases give a duration.
const DefaultFallbackDays = 3

var dateLayouts = []string{
	"2006-1-2",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/1/2",
	"1/2/2006",
	"1-2-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"1/2/06",
}

type durationPhrase struct {
	re   *regexp.Regexp
	days int // 0 means read the captured number
}

// Checked in order; first hit wins.
var durationPhrases = []durationPhrase{
	{regexp.MustCompile(`\b(\d+)(?:\s*|-)days?\b`), 0},
	{regexp.MustCompile(`friday\s+(?:through|thru|to|-)\s+sunday`), 3},
	{regexp.MustCompile(`\bweekend\b`), 3},
	{regexp.MustCompile(`\b(?:a|one)\s+week\b`), 7},
	{regexp.MustCompile(`\bmonth\b`), 30},
}

// ParseDate accepts ISO (padded or not, with an optional clock), RFC 3339,
// US numeric and spelled-month dates. Only the calendar day is kept.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// DurationHint reads a day count from phrases such as "3 days", "2-day",
// "weekend", "friday through sunday", "a week" or "month".
func DurationHint(message string) (int, bool) {
	lower := strings.ToLower(message)
	for _, p := range durationPhrases {
		m := p.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		if p.days > 0 {
			return p.days, true
		}
		n, ok := atoi(m[1])
		if !ok {
			continue
		}
		if n < 1 {
			n = 1
		}
		return n, true
	}
	return 0, false
}

// DurationDays resolves the rental length in days, always at least 1.
// Two parseable dates win (inclusive, swapped bounds reordered), then a
// duration phrase in message, then fallback.
func DurationDays(start, end, message string, fallback int) int {
	if fallback < 1 {
		fallback = DefaultFallbackDays
	}

	s, okStart := ParseDate(start)
	e, okEnd := ParseDate(end)
	if okStart && okEnd {
		if e.Before(s) {
			s, e = e, s
		}
		days := int(e.Sub(s).Hours()/24) + 1
		if days < 1 {
			days = 1
		}
		return days
	}

	if n, ok := DurationHint(message); ok {
		return n
	}
	return fallback
}
