package parsing

import (
	"math"
	"strings"
	"unicode/utf8"
)

// DefaultMinSimilarity is the fuzzy match threshold used when none is given.
const DefaultMinSimilarity = 0.55

// MatchKind records which strategy resolved a phrase.
type MatchKind string

const (
	MatchNone      MatchKind = "none"
	MatchExact     MatchKind = "exact"
	MatchSubstring MatchKind = "substring"
	MatchFuzzy     MatchKind = "fuzzy"
)

// Match is the outcome of resolving one phrase against the catalog.
type Match struct {
	SKU        string
	Confidence float64
	Kind       MatchKind
	Synonym    string
}

// Find resolves phrase to a SKU: exact phrase, then the longest synonym the
// phrase contains, then the best fuzzy ratio at or above minSimilarity.
// A zero Match (empty SKU) means nothing qualified.
func (c *Catalog) Find(phrase string, minSimilarity float64) Match {
	norm := Normalize(phrase)

	if sku, ok := c.exact[norm]; ok {
		return Match{SKU: sku, Confidence: 1.0, Kind: MatchExact, Synonym: norm}
	}

	for _, syn := range c.bySpecificity {
		if strings.Contains(norm, syn.Phrase) {
			conf := math.Min(1.0, 0.85+float64(utf8.RuneCountInString(syn.Phrase))/50)
			return Match{SKU: syn.SKU, Confidence: conf, Kind: MatchSubstring, Synonym: syn.Phrase}
		}
	}

	best := Match{Kind: MatchNone}
	for _, syn := range c.ordered {
		score := Similarity(norm, syn.Phrase)
		if score > best.Confidence && score >= minSimilarity {
			best = Match{SKU: syn.SKU, Confidence: score, Kind: MatchFuzzy, Synonym: syn.Phrase}
		}
	}
	return best
}

// FindMatchingSKU resolves phrase against the default catalog.
func FindMatchingSKU(phrase string, minSimilarity float64) (string, float64) {
	m := DefaultCatalog().Find(phrase, minSimilarity)
	return m.SKU, m.Confidence
}
