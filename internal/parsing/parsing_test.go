package parsing

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		`5 60" Round Tables`:     "5 60 inch round tables",
		"60-inch table":          "60 inch table",
		"60in table":             "60 inch table",
		"8-foot table":           "8 foot table",
		"8ft  banquet   table":   "8 foot banquet table",
		"8 ft table":             "8 foot table",
		"  White Folding Chairs": "white folding chairs",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
		if again := Normalize(want); again != want {
			t.Fatalf("Normalize not idempotent for %q: %q", want, again)
		}
	}
}

func TestParseQuantity(t *testing.T) {
	cases := map[string]int{
		"50":      50,
		"5x":      5,
		"qty 5":   5,
		"qty: 7":  7,
		"ten":     10,
		"a dozen": 12,
		"hundred": 100,
		"a":       1,
	}
	for in, want := range cases {
		got, ok := ParseQuantity(in)
		if !ok || got != want {
			t.Fatalf("ParseQuantity(%q) = %d,%v want %d", in, got, ok, want)
		}
	}
	if _, ok := ParseQuantity("lots"); ok {
		t.Fatalf("expected no quantity for 'lots'")
	}
}

func TestExtractLineItems_Patterns(t *testing.T) {
	cases := []struct {
		in   string
		qty  int
		name string
		size string
	}{
		{"qty 10 speakers", 10, "speakers", ""},
		{"5x chairs", 5, "chairs", ""},
		{"5 60-inch round tables", 5, "60 inch round tables", "60inch"},
		{"3 8 ft tables", 3, "8 foot tables", "8foot"},
		{"50 chairs", 50, "chairs", ""},
		{"a dozen tables", 12, "tables", ""},
		{"ten microphones", 10, "microphones", ""},
		{"projector", 1, "projector", ""},
		{"I need 20 uplights", 20, "uplights", ""},
	}
	for _, tc := range cases {
		items := ExtractLineItems(tc.in)
		if len(items) != 1 {
			t.Fatalf("%q: expected 1 item, got %d", tc.in, len(items))
		}
		it := items[0]
		if it.Quantity != tc.qty || it.NormalizedName != tc.name {
			t.Fatalf("%q: got qty=%d name=%q", tc.in, it.Quantity, it.NormalizedName)
		}
		if it.Attributes["size"] != tc.size {
			t.Fatalf("%q: got size %q, want %q", tc.in, it.Attributes["size"], tc.size)
		}
	}
}

func TestExtractLineItems_SplitsSeparators(t *testing.T) {
	items := ExtractLineItems("Need 50 chairs, 5 tables; a mixer and two fans")
	if len(items) != 4 {
		t.Fatalf("expected 4 segments, got %d: %+v", len(items), items)
	}
	if items[0].RawText != "50 chairs" || items[3].Quantity != 2 {
		t.Fatalf("unexpected segments: %+v", items)
	}
}

func TestFindMatchingSKU(t *testing.T) {
	cases := []struct {
		phrase string
		sku    string
		exact  bool
	}{
		{"white folding chairs", "CHAIR-FOLD-WHT", true},
		{"60 inch round tables", "TABLE-60RND", true},
		{"8ft tables", "TABLE-8FT-RECT", true},
		{"tables", "TABLE-8FT-RECT", true},
		{"tent", "TENT-20x20", true},
		{"uplights for a 2-day wedding", "LIGHT-UPLIGHT-LED", false},
		{"mixer for friday through sunday", "MIXER-8CH", false},
		{"scissor lift", "LIFT-SCISSOR-19", true},
	}
	for _, tc := range cases {
		sku, conf := FindMatchingSKU(tc.phrase, DefaultMinSimilarity)
		if sku != tc.sku {
			t.Fatalf("%q: expected %s, got %s", tc.phrase, tc.sku, sku)
		}
		if tc.exact && conf != 1.0 {
			t.Fatalf("%q: expected exact confidence, got %f", tc.phrase, conf)
		}
		if !tc.exact && (conf < 0.85 || conf > 1.0) {
			t.Fatalf("%q: expected substring confidence, got %f", tc.phrase, conf)
		}
	}
}

func TestFindMatchingSKU_SubstringConfidence(t *testing.T) {
	m := DefaultCatalog().Find("mixer for friday through sunday", DefaultMinSimilarity)
	if m.Kind != MatchSubstring || m.Synonym != "mixer" {
		t.Fatalf("unexpected match: %+v", m)
	}
	if math.Abs(m.Confidence-0.95) > 1e-9 {
		t.Fatalf("expected confidence 0.95, got %f", m.Confidence)
	}

	capped := DefaultCatalog().Find("uplights for a 2-day wedding", DefaultMinSimilarity)
	if capped.Synonym != "uplights" || capped.Confidence != 1.0 {
		t.Fatalf("expected capped confidence for long synonym, got %+v", capped)
	}
}

func TestFindMatchingSKU_FuzzyAndNone(t *testing.T) {
	m := DefaultCatalog().Find("projecter", DefaultMinSimilarity)
	if m.SKU != "PROJECTOR-4K" || m.Kind != MatchFuzzy {
		t.Fatalf("expected fuzzy projector match, got %+v", m)
	}
	if sku, conf := FindMatchingSKU("xyzzy qwv", DefaultMinSimilarity); sku != "" || conf != 0 {
		t.Fatalf("expected no match, got %s %f", sku, conf)
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity("abcd", "ABCD"); got != 1.0 {
		t.Fatalf("expected 1.0, got %f", got)
	}
	if got := Similarity("abcd", "bcde"); got != 0.75 {
		t.Fatalf("expected 0.75, got %f", got)
	}
	if got := Similarity("", "abc"); got != 0 {
		t.Fatalf("expected 0, got %f", got)
	}
}

func TestParseItemsFromMessage_Scenarios(t *testing.T) {
	type want struct {
		sku string
		qty int
	}
	cases := []struct {
		msg  string
		want []want
	}{
		{"50 white folding chairs and 5 60-inch round tables", []want{{"CHAIR-FOLD-WHT", 50}, {"TABLE-60RND", 5}}},
		{"hundred chairs, dozen tables, tent for outdoor event", []want{{"CHAIR-FOLD-WHT", 100}, {"TABLE-8FT-RECT", 12}, {"TENT-20x20", 1}}},
		{"Ten speakers and a mixer for Friday through Sunday", []want{{"SPEAKER-PA-BASIC", 10}, {"MIXER-8CH", 1}}},
		{"PA system and twenty uplights for a 2-day wedding", []want{{"SPEAKER-PA-PRO", 1}, {"LIGHT-UPLIGHT-LED", 20}}},
	}
	for _, tc := range cases {
		items := ParseItemsFromMessage(tc.msg)
		if len(items) != len(tc.want) {
			t.Fatalf("%q: expected %d items, got %+v", tc.msg, len(tc.want), items)
		}
		for i, w := range tc.want {
			if !items[i].Matched || items[i].SKU != w.sku || items[i].Quantity != w.qty {
				t.Fatalf("%q item %d: got %+v want %+v", tc.msg, i, items[i], w)
			}
		}
	}
}

func TestParseItems_DedupeKeepsHigherConfidenceInPlace(t *testing.T) {
	items := ParseItemsFromMessage("chairs for the patio, 40 white folding chairs, xyzzy qwv")
	if len(items) != 2 {
		t.Fatalf("expected chair item plus unmatched, got %+v", items)
	}
	if items[0].SKU != "CHAIR-FOLD-WHT" || items[0].Quantity != 40 || items[0].Confidence != 1.0 {
		t.Fatalf("expected exact duplicate to replace first, got %+v", items[0])
	}
	if items[1].Matched || items[1].UnmatchedName != "xyzzy qwv" {
		t.Fatalf("expected unmatched item, got %+v", items[1])
	}
	if len(Unmatched(items)) != 1 {
		t.Fatalf("expected one unmatched item")
	}
}

func TestDurationDays(t *testing.T) {
	cases := []struct {
		start, end, msg string
		want            int
	}{
		{"2024-04-12", "2024-04-14", "", 3},
		{"2024-04-14", "2024-04-12", "", 3},
		{"04/12/2024", "4/12/2024", "", 1},
		{"", "", "need it this weekend", 3},
		{"", "", "Friday through Sunday", 3},
		{"", "", "for a 2-day wedding", 2},
		{"", "", "5 days please", 5},
		{"", "", "0 days", 1},
		{"", "", "for a week", 7},
		{"", "", "about a month", 30},
		{"bad", "2024-04-14", "nothing useful", 3},
	}
	for _, tc := range cases {
		if got := DurationDays(tc.start, tc.end, tc.msg, DefaultFallbackDays); got != tc.want {
			t.Fatalf("DurationDays(%q,%q,%q) = %d, want %d", tc.start, tc.end, tc.msg, got, tc.want)
		}
	}
	if got := DurationDays("", "", "", 5); got != 5 {
		t.Fatalf("expected fallback 5, got %d", got)
	}
}

func TestDurationDays_DateFormats(t *testing.T) {
	spans := [][2]string{
		{"2024-04-12", "2024-04-20"},
		{"2024/04/12", "2024/04/20"},
		{"2024-4-12", "2024-4-20"},
		{"4-12-2024", "4-20-2024"},
		{"04-12-2024", "04-20-2024"},
		{"04/12/2024", "04/20/2024"},
		{"04/12/24", "04/20/24"},
		{"April 12 2024", "April 20 2024"},
		{"April 12, 2024", "April 20, 2024"},
		{"Apr 12 2024", "Apr 20 2024"},
		{"12 April 2024", "20 April 2024"},
		{"12 Apr 2024", "20 Apr 2024"},
		{"2024-04-12 09:00", "2024-04-20 17:00"},
		{"2024-04-12 09:00:00", "2024-04-20 17:30:00"},
		{"2024-04-12T09:00:00Z", "2024-04-20T17:00:00-05:00"},
	}
	for _, s := range spans {
		if got := DurationDays(s[0], s[1], "for the weekend", DefaultFallbackDays); got != 9 {
			t.Fatalf("DurationDays(%q,%q) = %d, want 9", s[0], s[1], got)
		}
	}
}

func TestParseDate_TwoDigitYear(t *testing.T) {
	got, ok := ParseDate("4/12/24")
	if !ok || got.Year() != 2024 || got.Month() != 4 || got.Day() != 12 {
		t.Fatalf("unexpected parse of 4/12/24: %v %v", got, ok)
	}
	if _, ok := ParseDate("someday"); ok {
		t.Fatalf("expected garbage to be rejected")
	}
}

func TestCatalog_EverySynonymRoundTrips(t *testing.T) {
	c := DefaultCatalog()
	for _, syn := range c.Synonyms() {
		m := c.Find(syn.Phrase, DefaultMinSimilarity)
		if m.SKU != syn.SKU || m.Confidence != 1.0 {
			t.Fatalf("synonym %q: got %s %f, want %s 1.0", syn.Phrase, m.SKU, m.Confidence, syn.SKU)
		}
	}
}

func TestFindMatchingSKU_PrefersSpecificPhrase(t *testing.T) {
	sku, _ := FindMatchingSKU("two white folding chair rentals", DefaultMinSimilarity)
	if sku != "CHAIR-FOLD-WHT" {
		t.Fatalf("expected folding chair sku, got %s", sku)
	}
	sku, _ = FindMatchingSKU("black linens for tables", DefaultMinSimilarity)
	if sku != "LINEN-120RND-BLK" {
		t.Fatalf("expected black linen sku, got %s", sku)
	}
}
