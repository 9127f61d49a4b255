package location

import "testing"

func TestResolve_ConflictUsesSelection(t *testing.T) {
	got := Resolve(Request{Text: "Need equipment in Austin", SelectedLabel: "Dallas, TX"})
	if got.FreeText != "Austin" {
		t.Fatalf("expected free text Austin, got %q", got.FreeText)
	}
	if got.Final != "Dallas, TX" || !got.Conflict {
		t.Fatalf("expected conflict with selected final, got %+v", got)
	}
	wantMsg := "Location mismatch: customer wrote 'Austin' but selected 'Dallas, TX'. Using selected location for pricing."
	if got.ConflictMessage != wantMsg {
		t.Fatalf("unexpected conflict message: %q", got.ConflictMessage)
	}
	wantRationale := "Selected service location 'Dallas, TX' used for pricing. Customer mentioned 'Austin' in their request - please confirm."
	if got.Rationale != wantRationale {
		t.Fatalf("unexpected rationale: %q", got.Rationale)
	}
}

func TestResolve_Precedence(t *testing.T) {
	cases := []struct {
		name      string
		req       Request
		final     string
		rationale string
	}{
		{
			name:      "selection confirmed by text",
			req:       Request{Text: "tent for a party in dallas", SelectedLabel: "Dallas, TX"},
			final:     "Dallas, TX",
			rationale: "Service location 'Dallas, TX' confirmed by customer request.",
		},
		{
			name:      "selection only",
			req:       Request{Text: "50 chairs", SelectedLabel: "Plano, TX", SelectedID: "plano"},
			final:     "Plano, TX",
			rationale: "Service location 'Plano, TX' selected by customer.",
		},
		{
			name:      "free text only",
			req:       Request{Text: "generator near Houston"},
			final:     "Houston",
			rationale: "Location 'Houston' identified from customer request.",
		},
		{
			name:      "postal code",
			req:       Request{Text: "50 chairs", PostalCode: "75201"},
			final:     "ZIP 75201",
			rationale: "Location based on postal code 75201.",
		},
		{
			name:      "nothing",
			req:       Request{Text: "50 chairs", SelectedLabel: "   "},
			final:     UnknownLocation,
			rationale: "No specific location provided. Default service area assumed.",
		},
		{
			name:      "stated field wins over text",
			req:       Request{Text: "event in Austin", Stated: "ft worth"},
			final:     "Fort Worth, TX",
			rationale: "Location 'Fort Worth, TX' identified from customer request.",
		},
	}
	for _, tc := range cases {
		got := Resolve(tc.req)
		if got.Final != tc.final || got.Rationale != tc.rationale || got.Conflict {
			t.Fatalf("%s: got %+v", tc.name, got)
		}
	}
}

func TestResolve_KeepsSelectionMeta(t *testing.T) {
	got := Resolve(Request{SelectedLabel: "Southlake, TX", SelectedMeta: &Meta{Zone: "regional", Region: "north"}})
	if got.SelectedMeta == nil || got.SelectedMeta.Zone != "regional" {
		t.Fatalf("expected meta to be carried, got %+v", got.SelectedMeta)
	}
}

func TestExtract(t *testing.T) {
	r := NewResolver(nil, 0)
	cases := map[string]string{
		"Delivery to Fort Worth please":   "Fort Worth, TX",
		"setup at southlake tx":           "Southlake, TX",
		"wedding in san antonio, texas":   "San Antonio",
		"we are near Round Rock":          "Round Rock",
		"party at the park":               "The Park",
		"Dallas metro area, outdoor tent": "Dallas, TX",
	}
	for in, want := range cases {
		got, ok := r.Extract(in)
		if !ok || got != want {
			t.Fatalf("Extract(%q) = %q,%v want %q", in, got, ok, want)
		}
	}
	if _, ok := r.Extract("50 chairs and 5 tables"); ok {
		t.Fatalf("expected no location")
	}
}

func TestLocationsMatch(t *testing.T) {
	matches := [][2]string{
		{"Dallas, TX", "dallas, tx"},
		{"Dallas", "Dallas, TX"},
		{"ft worth", "fort worth tx"},
		{"Dallas metro area", "Dallas, TX"},
		{"Fort Worth", "Fort Worth, TX"},
	}
	for _, m := range matches {
		if !LocationsMatch(m[0], m[1]) {
			t.Fatalf("expected %q ~ %q", m[0], m[1])
		}
	}
	mismatches := [][2]string{
		{"Austin", "Dallas, TX"},
		{"Houston", "Fort Worth, TX"},
		{"", "Dallas, TX"},
	}
	for _, m := range mismatches {
		if LocationsMatch(m[0], m[1]) {
			t.Fatalf("expected %q !~ %q", m[0], m[1])
		}
	}
}

func TestNewTable_RejectsMissingCanonical(t *testing.T) {
	if _, err := NewTable([]byte("locations:\n  - aliases: [x]\n")); err == nil {
		t.Fatalf("expected error")
	}
}
