package location

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed locations.yaml
var locationsYAML []byte

// KnownLocation is a canonical service area and the spellings that refer to it.
type KnownLocation struct {
	Canonical string   `yaml:"canonical"`
	Aliases   []string `yaml:"aliases"`
}

// Table is the ordered alias table. It is immutable once built.
type Table struct {
	entries []KnownLocation
}

// NewTable decodes an alias table. Aliases are lowercased and trimmed.
func NewTable(raw []byte) (*Table, error) {
	var file struct {
		Locations []KnownLocation `yaml:"locations"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}
	t := &Table{}
	for _, loc := range file.Locations {
		if strings.TrimSpace(loc.Canonical) == "" {
			return nil, fmt.Errorf("decode locations: entry without canonical name")
		}
		aliases := make([]string, 0, len(loc.Aliases))
		for _, a := range loc.Aliases {
			if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
				aliases = append(aliases, a)
			}
		}
		t.entries = append(t.entries, KnownLocation{Canonical: loc.Canonical, Aliases: aliases})
	}
	return t, nil
}

// DefaultTable returns the embedded service-area table, built once.
var DefaultTable = sync.OnceValue(func() *Table {
	t, err := NewTable(locationsYAML)
	if err != nil {
		panic(err)
	}
	return t
})

// Known lists the canonical service areas in table order.
func (t *Table) Known() []KnownLocation {
	out := make([]KnownLocation, len(t.entries))
	copy(out, t.entries)
	return out
}

// scan returns the first canonical name whose alias occurs inside lower.
func (t *Table) scan(lower string) (string, bool) {
	for _, loc := range t.entries {
		for _, alias := range loc.Aliases {
			if strings.Contains(lower, alias) {
				return loc.Canonical, true
			}
		}
	}
	return "", false
}

// Canonical maps a whole location string to its canonical name, if known.
func (t *Table) Canonical(value string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(value))
	for _, loc := range t.entries {
		if strings.ToLower(loc.Canonical) == lower {
			return loc.Canonical, true
		}
		for _, alias := range loc.Aliases {
			if alias == lower {
				return loc.Canonical, true
			}
		}
	}
	return "", false
}
