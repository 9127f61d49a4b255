package pricing

import "github.com/shopspring/decimal"

// Money is a currency amount. It renders with exactly two decimals in JSON and
// fmt output, so 686.80 stays "686.80" instead of "686.8".
type Money struct {
	decimal.Decimal
}

// NewMoney wraps d without rounding it.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func (m Money) String() string {
	return m.StringFixed(2)
}

// MarshalJSON writes the amount as a quoted string with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}

// UnmarshalJSON accepts quoted or bare numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Decimal.UnmarshalJSON(data)
}
