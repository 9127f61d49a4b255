// Package pricing computes rental quotes from rates, rental days and policy rules.
// Every monetary intermediate is rounded to cents (half away from zero) as soon
// as it is computed, so identical inputs always give identical amounts.
package pricing

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrRateNotFound means a SKU has no pricing record.
	ErrRateNotFound = errors.New("rate not found")
	// ErrGuardrailViolation means the discounted subtotal is not positive.
	ErrGuardrailViolation = errors.New("guardrail violation: subtotal must be positive")
)

// Customer tiers.
const (
	TierA = "A"
	TierB = "B"
	TierC = "C"
)

// Fee names.
const (
	FeeDamageWaiver     = "damage_waiver"
	FeeDelivery         = "delivery_fee"
	FeeGoodwillDiscount = "goodwill_discount"
)

// ValidTier reports whether tier is A, B or C.
func ValidTier(tier string) bool {
	return tier == TierA || tier == TierB || tier == TierC
}

// Rate is the pricing record of one SKU.
type Rate struct {
	SKU             string          `json:"sku"`
	DailyRate       decimal.Decimal `json:"dailyRate"`
	DeliveryFeeBase decimal.Decimal `json:"deliveryFeeBase"`
}

// RateSource looks up rates and display names.
type RateSource interface {
	// GetRate returns ErrRateNotFound (possibly wrapped) when sku has no rate.
	GetRate(ctx context.Context, sku string) (Rate, error)
	// GetItemName falls back to the SKU itself when no name is known.
	GetItemName(ctx context.Context, sku string) (string, error)
}

// Item is a SKU and quantity to price.
type Item struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// LineItem is a priced quote line.
type LineItem struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	DailyRate Money  `json:"dailyRate"`
	UnitPrice Money  `json:"unitPrice"`
	Subtotal  Money  `json:"subtotal"`
}

// Fee is a named adjustment added to the taxable amount, or a post-tax credit.
type Fee struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// Quote is the priced result. Subtotal and Tax never change after ComputeQuote;
// later steps may only append a fee and lower Total.
type Quote struct {
	Items                  []LineItem      `json:"items"`
	SubtotalBeforeDiscount Money           `json:"subtotalBeforeDiscount"`
	DiscountPct            decimal.Decimal `json:"discountPct"`
	DiscountAmount         Money           `json:"discountAmount"`
	Subtotal               Money           `json:"subtotal"`
	Fees                   []Fee           `json:"fees"`
	Tax                    Money           `json:"tax"`
	Total                  Money           `json:"total"`
	Days                   int             `json:"days"`
	Notes                  []string        `json:"notes"`
}

// Fee returns the named fee amount, or zero.
func (q *Quote) Fee(name string) decimal.Decimal {
	for _, f := range q.Fees {
		if f.Name == name {
			return f.Amount.Decimal
		}
	}
	return decimal.Zero
}

// HasFee reports whether a fee with name was appended, whatever its amount.
func (q *Quote) HasFee(name string) bool {
	for _, f := range q.Fees {
		if f.Name == name {
			return true
		}
	}
	return false
}

// round2 rounds half away from zero to cents.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

var hundred = decimal.NewFromInt(100)

func pctOf(amount, pct decimal.Decimal) decimal.Decimal {
	return round2(amount.Mul(pct).Div(hundred))
}
