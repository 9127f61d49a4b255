// Package pdf renders rental quotes as single-document PDFs using maroto/v2.
// The layout carries a header, the quote details card, the equipment table,
// totals, the first quote notes, rental terms and a repeating footer.
package pdf

import (
	"fmt"
	"strings"
	"time"

	"rental_quote_backend/internal/quotes/transport"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

// ── Colour palette ──────────────────────────────────────────────────────

var (
	colorPrimary   = &props.Color{Red: 31, Green: 41, Blue: 55}    // gray-800
	colorSecondary = &props.Color{Red: 75, Green: 85, Blue: 99}    // gray-600
	colorMuted     = &props.Color{Red: 156, Green: 163, Blue: 175} // gray-400
	colorAccent    = &props.Color{Red: 37, Green: 99, Blue: 235}   // blue-600
	colorTableAlt  = &props.Color{Red: 249, Green: 250, Blue: 251} // gray-50
	colorGreen     = &props.Color{Red: 16, Green: 185, Blue: 129}  // emerald-500
	colorBorder    = &props.Color{Red: 229, Green: 231, Blue: 235} // gray-200
	colorWhite     = &props.Color{Red: 255, Green: 255, Blue: 255}
)

const (
	brandName    = "RentalAI"
	brandTagline = "Enterprise Equipment Rentals"
	contactEmail = "quotes@rentalai.demo"
	maxNotes     = 2
)

var tierLabels = map[string]string{"A": "Premium", "B": "Corporate", "C": "Standard"}

// ── Data struct ─────────────────────────────────────────────────────────

// QuotePDFData holds everything printed on a quote.
type QuotePDFData struct {
	RunID       string
	GeneratedAt time.Time
	Quote       transport.QuoteDocument
}

// GenerateQuotePDF renders the quote and returns the PDF bytes.
func GenerateQuotePDF(data QuotePDFData) ([]byte, error) {
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}

	cfg := config.NewBuilder().
		WithLeftMargin(13).
		WithTopMargin(10).
		WithRightMargin(13).
		Build()

	m := maroto.New(cfg)

	if err := m.RegisterFooter(buildFooter(data)); err != nil {
		return nil, fmt.Errorf("register footer: %w", err)
	}

	m.AddRows(buildHeader(data)...)
	m.AddRows(row.New(1).WithStyle(&props.Cell{
		BorderType:  border.Bottom,
		BorderColor: colorBorder,
	}))
	m.AddRows(row.New(5))

	m.AddRows(buildDetails(data)...)
	m.AddRows(row.New(5))

	m.AddRows(buildItemsTable(data.Quote)...)
	m.AddRows(row.New(4))

	m.AddRows(buildTotalsBlock(data.Quote)...)

	if notes := firstNotes(data.Quote.Notes, maxNotes); len(notes) > 0 {
		m.AddRows(row.New(5))
		m.AddRows(buildNotesBlock(notes)...)
	}

	m.AddRows(row.New(6))
	m.AddRows(buildTerms()...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// ── Header ──────────────────────────────────────────────────────────────

func buildHeader(data QuotePDFData) []core.Row {
	brandCol := col.New(6).Add(
		text.New(brandName, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Color: colorAccent,
		}),
		text.New(brandTagline, props.Text{
			Size:  8,
			Color: colorMuted,
			Top:   9,
		}),
	)

	titleCol := col.New(6).Add(
		text.New("QUOTE", props.Text{
			Size:  22,
			Style: fontstyle.Bold,
			Align: align.Right,
			Color: colorPrimary,
		}),
		text.New("#"+data.RunID, props.Text{
			Size:  8,
			Align: align.Right,
			Color: colorMuted,
			Top:   11,
		}),
	)

	return []core.Row{row.New(18).Add(brandCol, titleCol)}
}

// ── Quote details ───────────────────────────────────────────────────────

func buildDetails(data QuotePDFData) []core.Row {
	q := data.Quote
	labelStyle := props.Text{Size: 7, Color: colorMuted, Top: 1.5, Left: 2}
	valueStyle := props.Text{Size: 9, Style: fontstyle.Bold, Color: colorPrimary, Top: 0.5, Left: 2}

	where := q.Location.Final
	if where == "" {
		where = "Not specified"
	}

	cell := &props.Cell{BackgroundColor: colorTableAlt}
	return []core.Row{
		sectionTitle("QUOTE DETAILS"),
		row.New(6).Add(
			col.New(3).Add(text.New("Date", labelStyle)),
			col.New(3).Add(text.New("Location", labelStyle)),
			col.New(3).Add(text.New("Rental Period", labelStyle)),
			col.New(3).Add(text.New("Customer Tier", labelStyle)),
		).WithStyle(cell),
		row.New(7).Add(
			col.New(3).Add(text.New(data.GeneratedAt.Format("Jan 02, 2006"), valueStyle)),
			col.New(3).Add(text.New(where, valueStyle)),
			col.New(3).Add(text.New(rentalPeriod(q), valueStyle)),
			col.New(3).Add(text.New(tierLabel(q.Tier), valueStyle)),
		).WithStyle(cell),
	}
}

// ── Equipment table ─────────────────────────────────────────────────────

func buildItemsTable(q transport.QuoteDocument) []core.Row {
	rows := []core.Row{sectionTitle("EQUIPMENT")}

	headerStyle := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorWhite, Top: 1.5, Left: 1}
	headerCenter := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorWhite, Align: align.Center, Top: 1.5}
	headerRight := props.Text{Size: 7.5, Style: fontstyle.Bold, Color: colorWhite, Align: align.Right, Top: 1.5, Right: 1}

	rows = append(rows, row.New(7).Add(
		col.New(5).Add(text.New("Item", headerStyle)),
		col.New(1).Add(text.New("Qty", headerCenter)),
		col.New(1).Add(text.New("Days", headerCenter)),
		col.New(2).Add(text.New("Daily Rate", headerRight)),
		col.New(3).Add(text.New("Total", headerRight)),
	).WithStyle(&props.Cell{BackgroundColor: colorAccent}))

	normal := props.Text{Size: 8, Color: colorPrimary, Top: 1, Left: 1}
	center := props.Text{Size: 8, Color: colorPrimary, Align: align.Center, Top: 1}
	right := props.Text{Size: 8, Color: colorPrimary, Align: align.Right, Top: 1, Right: 1}

	for i, item := range q.Items {
		name := item.Name
		if name == "" {
			name = item.SKU
		}
		r := row.New(7).Add(
			col.New(5).Add(text.New(name, normal)),
			col.New(1).Add(text.New(fmt.Sprintf("%d", item.Qty), center)),
			col.New(1).Add(text.New(fmt.Sprintf("%d", q.Days), center)),
			col.New(2).Add(text.New(formatCurrency(item.DailyRate.Decimal), right)),
			col.New(3).Add(text.New(formatCurrency(item.Subtotal.Decimal), right)),
		)
		if i%2 == 1 {
			r.WithStyle(&props.Cell{BackgroundColor: colorTableAlt})
		}
		rows = append(rows, r)
	}

	return rows
}

// ── Totals block ────────────────────────────────────────────────────────

func buildTotalsBlock(q transport.QuoteDocument) []core.Row {
	labelStyle := props.Text{Size: 9, Color: colorSecondary, Align: align.Right}
	valueStyle := props.Text{Size: 9, Color: colorPrimary, Align: align.Right, Right: 1}

	line := func(label string, amount decimal.Decimal) core.Row {
		return row.New(6).Add(
			col.New(6),
			col.New(3).Add(text.New(label, labelStyle)),
			col.New(3).Add(text.New(formatCurrency(amount), valueStyle)),
		)
	}

	rows := []core.Row{line("Subtotal:", q.Subtotal.Decimal)}
	if q.DiscountAmount.IsPositive() {
		rows = append(rows, line(fmt.Sprintf("Tier discount (%s%%):", q.DiscountPct.String()), q.DiscountAmount.Neg()))
	}
	for _, fee := range q.Fees {
		rows = append(rows, line(feeLabel(fee.Name)+":", fee.Amount.Decimal))
	}
	rows = append(rows, line("Tax:", q.Tax.Decimal))

	totalLabel := props.Text{Size: 12, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right, Top: 2}
	totalValue := props.Text{Size: 12, Style: fontstyle.Bold, Color: colorGreen, Align: align.Right, Top: 2, Right: 1}
	rows = append(rows, row.New(2))
	rows = append(rows, row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL:", totalLabel)),
		col.New(3).Add(text.New(formatCurrency(q.Total.Decimal), totalValue)),
	).WithStyle(&props.Cell{
		BorderType:  border.Top,
		BorderColor: colorAccent,
	}))

	return rows
}

// ── Notes ───────────────────────────────────────────────────────────────

func buildNotesBlock(notes []string) []core.Row {
	rows := []core.Row{sectionTitle("QUOTE NOTES")}
	for _, note := range notes {
		rows = append(rows, row.New(5).Add(
			col.New(12).Add(text.New("• "+note, props.Text{
				Size:  8,
				Color: colorSecondary,
				Left:  3,
			})),
		))
	}
	return rows
}

// ── Terms ───────────────────────────────────────────────────────────────

var rentalTerms = [][2]string{
	{"Quote Validity", "This quote is valid for 30 days from the date of issuance."},
	{"Reservation & Deposit", "25% non-refundable deposit required. Balance due upon delivery."},
	{"Cancellation Policy", "7+ days: full deposit refund. Within 7 days: deposit forfeited."},
	{"Delivery & Pickup", "Times are estimates. Clear access required. Additional charges may apply."},
	{"Equipment Condition", "Customer responsible from delivery to pickup. Damage charged at replacement cost."},
	{"Damage Waiver", "Covers accidental damage up to $1,000/item. Excludes intentional damage/theft."},
	{"Setup & Breakdown", "Basic delivery is drop-off only. Setup services available at additional cost."},
	{"Weather Policy", "Customer assumes responsibility for weather-related decisions."},
	{"Extension Policy", "24-hour advance notice required. Late returns: 1.5x daily rate."},
	{"Liability", "Customer agrees to indemnify rental company from claims arising from use."},
}

func buildTerms() []core.Row {
	rows := []core.Row{
		row.New(1).WithStyle(&props.Cell{
			BorderType:  border.Bottom,
			BorderColor: colorBorder,
		}),
		sectionTitle("TERMS & CONDITIONS"),
	}
	for i, term := range rentalTerms {
		rows = append(rows, row.New(4).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d.", i+1), props.Text{
				Size:  7,
				Style: fontstyle.Bold,
				Color: colorAccent,
				Align: align.Right,
				Right: 2,
			})),
			col.New(11).Add(text.New(term[0]+": "+term[1], props.Text{
				Size:  7,
				Color: colorSecondary,
			})),
		))
	}
	rows = append(rows, row.New(3), row.New(4).Add(
		col.New(12).Add(text.New(
			"By proceeding with this quote, customer acknowledges and agrees to the above terms.",
			props.Text{Size: 7, Color: colorMuted},
		)),
	))
	return rows
}

// ── Footer (repeats on every page) ─────────────────────────

func buildFooter(data QuotePDFData) core.Row {
	footerText := strings.Join([]string{
		brandName + " Copilot",
		"Quote #" + data.RunID,
		"Generated " + data.GeneratedAt.Format("Jan 02, 2006 at 03:04 PM"),
		contactEmail,
	}, "  ·  ")

	return row.New(10).Add(
		col.New(12).Add(
			text.New(footerText, props.Text{
				Size:  6.5,
				Color: colorMuted,
				Align: align.Center,
				Top:   4,
			}),
		),
	).WithStyle(&props.Cell{
		BorderType:  border.Top,
		BorderColor: colorBorder,
	})
}

// ── Helpers ─────────────────────────────────────────────────────────────

func sectionTitle(title string) core.Row {
	return row.New(7).Add(
		col.New(12).Add(text.New(title, props.Text{
			Size:  8,
			Style: fontstyle.Bold,
			Color: colorMuted,
			Top:   2,
		})),
	)
}

func rentalPeriod(q transport.QuoteDocument) string {
	if q.StartDate != "" && q.EndDate != "" {
		return q.StartDate + " - " + q.EndDate
	}
	if q.Days > 1 {
		return fmt.Sprintf("%d days", q.Days)
	}
	return "1 day"
}

func tierLabel(tier string) string {
	label, ok := tierLabels[tier]
	if !ok {
		return "Standard (Tier C)"
	}
	return fmt.Sprintf("%s (Tier %s)", label, tier)
}

// feeLabel turns damage_waiver into "Damage waiver".
func feeLabel(name string) string {
	label := strings.ReplaceAll(name, "_", " ")
	if label == "" {
		return "Fee"
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func firstNotes(notes []string, limit int) []string {
	out := make([]string, 0, limit)
	for _, n := range notes {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out
}

// formatCurrency prints dollars with thousands separators, e.g. $1,234.50 or -$49.95.
func formatCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}
