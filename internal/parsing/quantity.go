package parsing

import (
	"regexp"
	"strconv"
	"strings"
)

type wordNumber struct {
	word  string
	value int
}

// Order matters: it is the alternation order of the segment patterns.
var wordNumbers = []wordNumber{
	{"a", 1}, {"an", 1}, {"one", 1}, {"two", 2}, {"three", 3}, {"four", 4},
	{"five", 5}, {"six", 6}, {"seven", 7}, {"eight", 8}, {"nine", 9}, {"ten", 10},
	{"eleven", 11}, {"twelve", 12}, {"dozen", 12}, {"thirteen", 13}, {"fourteen", 14},
	{"fifteen", 15}, {"sixteen", 16}, {"seventeen", 17}, {"eighteen", 18},
	{"nineteen", 19}, {"twenty", 20}, {"thirty", 30}, {"forty", 40}, {"fifty", 50},
	{"sixty", 60}, {"seventy", 70}, {"eighty", 80}, {"ninety", 90}, {"hundred", 100},
}

var wordNumberValue = func() map[string]int {
	m := make(map[string]int, len(wordNumbers))
	for _, wn := range wordNumbers {
		m[wn.word] = wn.value
	}
	return m
}()

// wordNumberAlternation joins word numbers for use in a regexp group.
func wordNumberAlternation(skipArticles bool) string {
	words := make([]string, 0, len(wordNumbers))
	for _, wn := range wordNumbers {
		if skipArticles && (wn.word == "a" || wn.word == "an") {
			continue
		}
		words = append(words, wn.word)
	}
	return strings.Join(words, "|")
}

var (
	timesQuantity = regexp.MustCompile(`^(\d+)x$`)
	qtyQuantity   = regexp.MustCompile(`^qty[:\s]*(\d+)$`)
)

// ParseQuantity reads a standalone quantity: "50", "5x", "qty 5", "qty: 5",
// "ten", "dozen", "a dozen". ok is false when text is not a quantity.
func ParseQuantity(text string) (n int, ok bool) {
	t := strings.TrimSpace(strings.ToLower(text))

	if m := timesQuantity.FindStringSubmatch(t); m != nil {
		return atoi(m[1])
	}
	if m := qtyQuantity.FindStringSubmatch(t); m != nil {
		return atoi(m[1])
	}
	if v, err := strconv.Atoi(t); err == nil {
		return v, true
	}
	if v, found := wordNumberValue[t]; found {
		return v, true
	}

	words := strings.Fields(t)
	if len(words) == 2 && (words[0] == "a" || words[0] == "an") {
		if v, found := wordNumberValue[words[1]]; found {
			return v, true
		}
	}
	return 0, false
}

func atoi(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
