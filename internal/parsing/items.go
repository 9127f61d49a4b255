package parsing

// MatchedItem is a segment resolved (or not) to a catalog SKU.
type MatchedItem struct {
	SKU           string  `json:"sku,omitempty"`
	Quantity      int     `json:"quantity"`
	Confidence    float64 `json:"confidence"`
	Source        string  `json:"source"`
	Matched       bool    `json:"matched"`
	UnmatchedName string  `json:"unmatchedName,omitempty"`
}

// ParseItems segments message and resolves each segment against c.
// At most one item per SKU survives: a later duplicate replaces the earlier one
// in place only if its confidence is strictly higher. Unmatched segments are
// always kept, in order.
func (c *Catalog) ParseItems(message string) []MatchedItem {
	lines := ExtractLineItems(message)

	out := make([]MatchedItem, 0, len(lines))
	position := make(map[string]int)
	for _, line := range lines {
		m := c.Find(line.NormalizedName, DefaultMinSimilarity)

		if m.SKU == "" {
			out = append(out, MatchedItem{
				Quantity:      line.Quantity,
				Source:        line.RawText,
				UnmatchedName: line.NormalizedName,
			})
			continue
		}

		item := MatchedItem{
			SKU:        m.SKU,
			Quantity:   line.Quantity,
			Confidence: m.Confidence,
			Source:     line.RawText,
			Matched:    true,
		}
		if idx, seen := position[m.SKU]; seen {
			if item.Confidence > out[idx].Confidence {
				out[idx] = item
			}
			continue
		}
		position[m.SKU] = len(out)
		out = append(out, item)
	}
	return out
}

// ParseItemsFromMessage parses message against the default catalog.
func ParseItemsFromMessage(message string) []MatchedItem {
	return DefaultCatalog().ParseItems(message)
}

// Unmatched returns the items that did not resolve to a SKU.
func Unmatched(items []MatchedItem) []MatchedItem {
	var out []MatchedItem
	for _, it := range items {
		if !it.Matched {
			out = append(out, it)
		}
	}
	return out
}
