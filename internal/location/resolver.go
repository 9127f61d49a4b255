// Package location extracts a service location from request text and reconciles it
// with the customer's selected service area and postal code.
package location

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"rental_quote_backend/internal/parsing"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultSimilarityThreshold is the fuzzy ratio at which two names count as the same place.
const DefaultSimilarityThreshold = 0.6

// UnknownLocation is the final location when no source named one.
const UnknownLocation = "Unknown / Not provided"

var placePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(dallas|fort\s*worth|plano|arlington|southlake)(?:\s*,?\s*(?:tx|texas))?\b`),
	regexp.MustCompile(`(?i)\b(austin|houston|san\s*antonio)(?:\s*,?\s*(?:tx|texas))?\b`),
	regexp.MustCompile(`(?i)\bin\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?(?:,\s*[A-Z]{2})?)\b`),
	regexp.MustCompile(`(?i)\bat\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?(?:,\s*[A-Z]{2})?)\b`),
	regexp.MustCompile(`(?i)\bnear\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)?(?:,\s*[A-Z]{2})?)\b`),
}

var wordToken = regexp.MustCompile(`\b\w+\b`)

var locationStopwords = map[string]bool{
	"tx": true, "texas": true, "metro": true, "area": true, "downtown": true,
	"north": true, "south": true, "east": true, "west": true,
}

// Meta carries the selected service area's zone and region.
type Meta struct {
	Zone   string `json:"zone,omitempty"`
	Region string `json:"region,omitempty"`
}

// Request gathers every location source for one quote.
type Request struct {
	// Text is the customer's message, scanned when Stated is blank.
	Text string
	// Stated is an explicit free-text location field, normalized through the alias table.
	Stated        string
	SelectedID    string
	SelectedLabel string
	SelectedMeta  *Meta
	PostalCode    string
}

// Resolved is the reconciled location used for pricing and the summary.
type Resolved struct {
	FreeText        string `json:"locationFreeText,omitempty"`
	Selected        string `json:"locationSelected,omitempty"`
	SelectedID      string `json:"locationSelectedId,omitempty"`
	SelectedMeta    *Meta  `json:"locationSelectedMeta,omitempty"`
	Final           string `json:"locationFinal"`
	Conflict        bool   `json:"locationConflict"`
	ConflictMessage string `json:"conflictMessage,omitempty"`
	Rationale       string `json:"rationale"`
}

// Resolver reconciles location sources against an alias table.
type Resolver struct {
	table     *Table
	threshold float64
}

// NewResolver creates a resolver. A nil table uses the embedded one and a
// non-positive threshold uses DefaultSimilarityThreshold.
func NewResolver(table *Table, threshold float64) *Resolver {
	if table == nil {
		table = DefaultTable()
	}
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Resolver{table: table, threshold: threshold}
}

// Resolve picks the final location. A selected service area always wins for
// pricing; free text only raises a conflict when it names a different place.
func (r *Resolver) Resolve(req Request) Resolved {
	freeText := ""
	if stated := strings.TrimSpace(req.Stated); stated != "" {
		freeText = r.NormalizeName(stated)
	} else {
		freeText, _ = r.Extract(req.Text)
	}

	selected := strings.TrimSpace(req.SelectedLabel)
	postal := strings.TrimSpace(req.PostalCode)

	var meta *Meta
	if req.SelectedMeta != nil && (req.SelectedMeta.Zone != "" || req.SelectedMeta.Region != "") {
		m := *req.SelectedMeta
		meta = &m
	}

	out := Resolved{
		FreeText:     freeText,
		Selected:     selected,
		SelectedID:   strings.TrimSpace(req.SelectedID),
		SelectedMeta: meta,
	}

	switch {
	case selected != "" && freeText != "":
		out.Final = selected
		if r.LocationsMatch(freeText, selected) {
			out.Rationale = fmt.Sprintf("Service location '%s' confirmed by customer request.", selected)
		} else {
			out.Conflict = true
			out.ConflictMessage = fmt.Sprintf("Location mismatch: customer wrote '%s' but selected '%s'. Using selected location for pricing.", freeText, selected)
			out.Rationale = fmt.Sprintf("Selected service location '%s' used for pricing. Customer mentioned '%s' in their request - please confirm.", selected, freeText)
		}
	case selected != "":
		out.Final = selected
		out.Rationale = fmt.Sprintf("Service location '%s' selected by customer.", selected)
	case freeText != "":
		out.Final = freeText
		out.Rationale = fmt.Sprintf("Location '%s' identified from customer request.", freeText)
	case postal != "":
		out.Final = "ZIP " + postal
		out.Rationale = fmt.Sprintf("Location based on postal code %s.", postal)
	default:
		out.Final = UnknownLocation
		out.Rationale = "No specific location provided. Default service area assumed."
	}
	return out
}

// Extract finds a place name in free text: known aliases first, then the
// city and "in/at/near Place" patterns.
func (r *Resolver) Extract(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	if canonical, ok := r.table.scan(strings.ToLower(text)); ok {
		return canonical, true
	}
	for _, re := range placePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if name := r.NormalizeName(strings.TrimSpace(m[1])); name != "" {
			return name, true
		}
	}
	return "", false
}

// NormalizeName maps a place name to its canonical form, or title-cases it.
func (r *Resolver) NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if canonical, ok := r.table.Canonical(name); ok {
		return canonical
	}
	// Casers carry state, so each call gets its own.
	return cases.Title(language.English).String(name)
}

// LocationsMatch reports whether a and b plausibly name the same place:
// equal, one contains the other, same canonical area, fuzzy ratio at or above
// the threshold, or a shared meaningful word.
func (r *Resolver) LocationsMatch(a, b string) bool {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	if la == "" || lb == "" {
		return false
	}
	if la == lb || strings.Contains(la, lb) || strings.Contains(lb, la) {
		return true
	}
	ca, okA := r.table.Canonical(la)
	cb, okB := r.table.Canonical(lb)
	if okA && okB && ca == cb {
		return true
	}
	if parsing.Similarity(la, lb) >= r.threshold {
		return true
	}

	wordsA := meaningfulWords(la)
	if len(wordsA) == 0 {
		return false
	}
	for w := range meaningfulWords(lb) {
		if wordsA[w] {
			return true
		}
	}
	return false
}

func meaningfulWords(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range wordToken.FindAllString(s, -1) {
		if !locationStopwords[w] {
			out[w] = true
		}
	}
	return out
}

var defaultResolver = sync.OnceValue(func() *Resolver { return NewResolver(nil, 0) })

// Resolve reconciles req with the embedded alias table.
func Resolve(req Request) Resolved {
	return defaultResolver().Resolve(req)
}

// LocationsMatch compares two names with the embedded alias table.
func LocationsMatch(a, b string) bool {
	return defaultResolver().LocationsMatch(a, b)
}
