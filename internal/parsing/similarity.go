package parsing

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Similarity is the Ratcliff/Obershelp ratio of a and b, compared
// case-insensitively rune by rune. It returns a value in [0, 1].
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(runes(strings.ToLower(a)), runes(strings.ToLower(b))).Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
