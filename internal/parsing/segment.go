package parsing

import (
	"fmt"
	"regexp"
	"strings"
)

// LineItem is one quantity-plus-phrase segment of a request.
type LineItem struct {
	Quantity       int               `json:"qty"`
	NormalizedName string            `json:"normalizedName"`
	RawText        string            `json:"rawText"`
	Attributes     map[string]string `json:"attributes"`
}

var (
	fillerPrefix  = regexp.MustCompile(`(?i)^(?:i\s+)?(?:need|want|require|looking\s+for|give\s+me|get\s+me|get|send|order)\s+`)
	segmentSplit  = regexp.MustCompile(`\s*(?:,|;)\s*|\s+and\s+`)
	qtyPrefixed   = regexp.MustCompile(`(?i)^qty[:\s]*(\d+)\s+(.+)$`)
	timesPrefixed = regexp.MustCompile(`(?i)^(\d+)x\s+(.+)$`)
	sizePrefixed  = regexp.MustCompile(`(?i)^(\d+)\s+(\d+)\s*(inch|foot|ft|in)?\s*(.+)$`)
	numPrefixed   = regexp.MustCompile(`^(\d+)\s+(.+)$`)
	articleWord   = regexp.MustCompile(`(?i)^(a|an)\s+(` + wordNumberAlternation(true) + `)\s+(.+)$`)
	wordPrefixed  = regexp.MustCompile(`(?i)^(` + wordNumberAlternation(false) + `)\s+(.+)$`)
)

// ExtractLineItems splits a request into segments and reads a quantity from each.
// Segments without a recognizable quantity count as one unit. If nothing survives
// splitting, the whole normalized text becomes a single item.
func ExtractLineItems(text string) []LineItem {
	normalized := fillerPrefix.ReplaceAllString(Normalize(text), "")

	var items []LineItem
	for _, segment := range segmentSplit.Split(normalized, -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		segment = strings.TrimSpace(fillerPrefix.ReplaceAllString(segment, ""))
		if segment == "" {
			continue
		}
		if item, ok := parseSegment(segment); ok {
			items = append(items, item)
		}
	}

	if len(items) == 0 {
		if item, ok := parseSegment(normalized); ok {
			items = append(items, item)
		}
	}
	return items
}

func parseSegment(segment string) (LineItem, bool) {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return LineItem{}, false
	}

	item := func(qty int, name string, attrs map[string]string) (LineItem, bool) {
		if attrs == nil {
			attrs = map[string]string{}
		}
		if qty < 1 {
			qty = 1
		}
		return LineItem{
			Quantity:       qty,
			NormalizedName: strings.TrimSpace(name),
			RawText:        segment,
			Attributes:     attrs,
		}, true
	}

	if m := qtyPrefixed.FindStringSubmatch(segment); m != nil {
		qty, _ := atoi(m[1])
		return item(qty, m[2], nil)
	}
	if m := timesPrefixed.FindStringSubmatch(segment); m != nil {
		qty, _ := atoi(m[1])
		return item(qty, m[2], nil)
	}
	if m := sizePrefixed.FindStringSubmatch(segment); m != nil {
		qty, _ := atoi(m[1])
		size := m[2]
		unit := strings.ToLower(m[3])
		switch unit {
		case "", "in":
			unit = "inch"
		case "ft":
			unit = "foot"
		}
		name := fmt.Sprintf("%s %s %s", size, unit, strings.TrimSpace(m[4]))
		return item(qty, name, map[string]string{"size": size + unit})
	}
	if m := numPrefixed.FindStringSubmatch(segment); m != nil {
		qty, _ := atoi(m[1])
		return item(qty, m[2], nil)
	}
	if m := articleWord.FindStringSubmatch(segment); m != nil {
		return item(wordNumberValue[strings.ToLower(m[2])], m[3], nil)
	}
	if m := wordPrefixed.FindStringSubmatch(segment); m != nil {
		return item(wordNumberValue[strings.ToLower(m[1])], m[2], nil)
	}
	return item(1, segment, nil)
}
