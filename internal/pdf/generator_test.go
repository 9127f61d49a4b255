package pdf

import (
	"bytes"
	"testing"
	"time"

	"rental_quote_backend/internal/location"
	"rental_quote_backend/internal/pricing"
	"rental_quote_backend/internal/quotes/transport"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func money(s string) pricing.Money { return pricing.NewMoney(dec(s)) }

func sampleDocument() transport.QuoteDocument {
	return transport.QuoteDocument{
		Quote: pricing.Quote{
			Items: []pricing.LineItem{
				{SKU: "CHAIR-FOLD-WHT", Name: "White Folding Chair", Qty: 50, DailyRate: money("2.50"), UnitPrice: money("7.50"), Subtotal: money("375.00")},
				{SKU: "TABLE-60RND", Name: "60in Round Table", Qty: 5, DailyRate: money("12.00"), UnitPrice: money("36.00"), Subtotal: money("180.00")},
			},
			SubtotalBeforeDiscount: money("555.00"),
			DiscountPct:            dec("10"),
			DiscountAmount:         money("55.50"),
			Subtotal:               money("499.50"),
			Fees: []pricing.Fee{
				{Name: pricing.FeeDamageWaiver, Amount: money("39.96")},
				{Name: pricing.FeeDelivery, Amount: money("95.00")},
			},
			Tax:   money("52.34"),
			Total: money("686.80"),
			Days:  3,
			Notes: []string{"first", "  ", "second", "third"},
		},
		Tier:     "A",
		Location: location.Resolved{Final: "Dallas, TX"},
	}
}

func TestGenerateQuotePDF(t *testing.T) {
	out, err := GenerateQuotePDF(QuotePDFData{
		RunID:       "5b0f5d0e-8f0c-4d7b-a3f4-0d7a1c9f1e21",
		GeneratedAt: time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		Quote:       sampleDocument(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected PDF header, got %q", out[:min(8, len(out))])
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := map[string]string{
		"0":        "$0.00",
		"686.8":    "$686.80",
		"1234.5":   "$1,234.50",
		"1000000":  "$1,000,000.00",
		"-49.95":   "-$49.95",
		"-1234.56": "-$1,234.56",
	}
	for in, want := range cases {
		if got := formatCurrency(dec(in)); got != want {
			t.Fatalf("formatCurrency(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestRentalPeriodAndLabels(t *testing.T) {
	doc := sampleDocument()
	if got := rentalPeriod(doc); got != "3 days" {
		t.Fatalf("unexpected period %q", got)
	}
	doc.StartDate, doc.EndDate = "2025-06-01", "2025-06-03"
	if got := rentalPeriod(doc); got != "2025-06-01 - 2025-06-03" {
		t.Fatalf("unexpected period %q", got)
	}
	if got := tierLabel("A"); got != "Premium (Tier A)" {
		t.Fatalf("unexpected tier label %q", got)
	}
	if got := feeLabel(pricing.FeeDamageWaiver); got != "Damage waiver" {
		t.Fatalf("unexpected fee label %q", got)
	}
	if got := firstNotes(doc.Notes, maxNotes); len(got) != 2 || got[1] != "second" {
		t.Fatalf("unexpected notes %v", got)
	}
}
