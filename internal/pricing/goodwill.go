package pricing

import "github.com/shopspring/decimal"

// GoodwillMaxRating is the highest rating that still earns a goodwill credit.
const GoodwillMaxRating = 3

var goodwillPct = decimal.NewFromInt(10)

// ApplyGoodwill credits 10% of the subtotal for a low rating. The credit is
// appended as a negative fee and taken off Total; Subtotal and Tax are untouched.
// It reports whether a credit was applied; a credit that rounds to zero is not.
func ApplyGoodwill(q *Quote, rating int) bool {
	if q == nil || rating > GoodwillMaxRating || !q.Subtotal.IsPositive() {
		return false
	}
	credit := pctOf(q.Subtotal.Decimal, goodwillPct)
	if !credit.IsPositive() {
		return false
	}
	q.Fees = append(q.Fees, Fee{Name: FeeGoodwillDiscount, Amount: NewMoney(credit.Neg())})
	q.Total = NewMoney(round2(q.Total.Sub(credit)))
	return true
}
