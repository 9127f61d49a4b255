package parsing

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Synonym is one normalized phrase that identifies a SKU.
type Synonym struct {
	Phrase string
	SKU    string
}

// Catalog maps normalized phrases to SKUs. It is immutable once built.
type Catalog struct {
	ordered       []Synonym         // load order, used by fuzzy matching
	bySpecificity []Synonym         // longest phrase first, stable on load order
	exact         map[string]string // phrase -> sku
	skus          []string
}

type catalogFile struct {
	Groups []struct {
		SKU      string   `yaml:"sku"`
		Synonyms []string `yaml:"synonyms"`
	} `yaml:"groups"`
}

// NewCatalog builds a catalog from raw YAML. Phrases are normalized; when two
// phrases collapse to the same normalized form the first one wins.
func NewCatalog(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{exact: make(map[string]string)}
	seenSKU := make(map[string]bool)
	for _, g := range file.Groups {
		if g.SKU == "" {
			return nil, fmt.Errorf("decode catalog: group without sku")
		}
		if !seenSKU[g.SKU] {
			seenSKU[g.SKU] = true
			c.skus = append(c.skus, g.SKU)
		}
		for _, phrase := range g.Synonyms {
			norm := Normalize(phrase)
			if norm == "" {
				continue
			}
			if _, dup := c.exact[norm]; dup {
				continue
			}
			c.exact[norm] = g.SKU
			c.ordered = append(c.ordered, Synonym{Phrase: norm, SKU: g.SKU})
		}
	}
	if len(c.ordered) == 0 {
		return nil, fmt.Errorf("decode catalog: no synonyms")
	}

	c.bySpecificity = make([]Synonym, len(c.ordered))
	copy(c.bySpecificity, c.ordered)
	sort.SliceStable(c.bySpecificity, func(i, j int) bool {
		return utf8.RuneCountInString(c.bySpecificity[i].Phrase) > utf8.RuneCountInString(c.bySpecificity[j].Phrase)
	})
	return c, nil
}

// DefaultCatalog returns the embedded rental catalog, built once.
var DefaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := NewCatalog(catalogYAML)
	if err != nil {
		panic(err)
	}
	return c
})

// SKUs lists every SKU in first-seen order.
func (c *Catalog) SKUs() []string {
	out := make([]string, len(c.skus))
	copy(out, c.skus)
	return out
}

// Synonyms lists every normalized phrase in load order.
func (c *Catalog) Synonyms() []Synonym {
	out := make([]Synonym, len(c.ordered))
	copy(out, c.ordered)
	return out
}
