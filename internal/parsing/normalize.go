// Package parsing turns free-text rental requests into quantities, SKUs and rental days.
//
// Everything here is pure: the synonym catalog is embedded and built once, and
// no function touches the network, the clock or shared mutable state.
package parsing

import (
	"regexp"
	"strings"
)

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

// Applied in order. The bare "ft" rule runs before the spaced one so that
// "8ft" and "8 ft" both land on "8 foot".
var unitRewrites = []rewrite{
	{regexp.MustCompile(`(\d+)["\x{201d}\x{201c}]`), "${1} inch"},
	{regexp.MustCompile(`(\d+)-inch`), "${1} inch"},
	{regexp.MustCompile(`(\d+)in\b`), "${1} inch"},
	{regexp.MustCompile(`(\d+)-foot`), "${1} foot"},
	{regexp.MustCompile(`(\d+)ft\b`), "${1} foot"},
	{regexp.MustCompile(`(\d+)\s*ft\b`), "${1} foot"},
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize lowercases text, rewrites inch and foot spellings to "N inch" / "N foot"
// and collapses whitespace. It is idempotent.
func Normalize(text string) string {
	out := strings.TrimSpace(strings.ToLower(text))
	for _, rw := range unitRewrites {
		out = rw.re.ReplaceAllString(out, rw.repl)
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(out, " "))
}
