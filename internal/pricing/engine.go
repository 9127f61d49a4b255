package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ComputeQuote prices items for days under policies and tier. A missing rate
// aborts the whole quote; so does a discounted subtotal that is not positive,
// in which case no total is computed.
func ComputeQuote(ctx context.Context, items []Item, days int, policies Policies, tier string, rates RateSource) (*Quote, error) {
	if days < 1 {
		days = 1
	}
	daysDec := decimal.NewFromInt(int64(days))

	q := &Quote{
		Items: make([]LineItem, 0, len(items)),
		Fees:  []Fee{},
		Days:  days,
		Notes: []string{},
	}

	subtotalBefore := decimal.Zero
	maxDelivery := decimal.Zero
	for _, it := range items {
		rate, err := rates.GetRate(ctx, it.SKU)
		if err != nil {
			if errors.Is(err, ErrRateNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrRateNotFound, it.SKU)
			}
			return nil, fmt.Errorf("get rate %s: %w", it.SKU, err)
		}
		name, err := rates.GetItemName(ctx, it.SKU)
		if err != nil || name == "" {
			name = it.SKU
		}

		unit := round2(rate.DailyRate.Mul(daysDec))
		line := round2(unit.Mul(decimal.NewFromInt(int64(it.Quantity))))
		q.Items = append(q.Items, LineItem{
			SKU:       it.SKU,
			Name:      name,
			Qty:       it.Quantity,
			DailyRate: NewMoney(rate.DailyRate),
			UnitPrice: NewMoney(unit),
			Subtotal:  NewMoney(line),
		})

		subtotalBefore = subtotalBefore.Add(line)
		if rate.DeliveryFeeBase.GreaterThan(maxDelivery) {
			maxDelivery = rate.DeliveryFeeBase
		}
	}

	q.SubtotalBeforeDiscount = NewMoney(round2(subtotalBefore))
	q.DiscountPct = policies.DiscountPct(tier)
	discount := pctOf(q.SubtotalBeforeDiscount.Decimal, q.DiscountPct)
	q.DiscountAmount = NewMoney(discount)
	q.Subtotal = NewMoney(round2(q.SubtotalBeforeDiscount.Sub(discount)))

	if !q.Subtotal.IsPositive() {
		return nil, fmt.Errorf("%w (subtotal %s)", ErrGuardrailViolation, q.Subtotal.StringFixed(2))
	}

	waiver := pctOf(q.Subtotal.Decimal, policies.DamageWaiverPct)
	if !waiver.IsZero() {
		q.Fees = append(q.Fees, Fee{Name: FeeDamageWaiver, Amount: NewMoney(waiver)})
	}
	delivery := round2(maxDelivery)
	if !delivery.IsZero() {
		q.Fees = append(q.Fees, Fee{Name: FeeDelivery, Amount: NewMoney(delivery)})
	}

	taxable := q.Subtotal.Add(waiver).Add(delivery)
	tax := pctOf(taxable, policies.TaxPct)
	q.Tax = NewMoney(tax)
	q.Total = NewMoney(round2(taxable.Add(tax)))
	return q, nil
}

// CheckGuardrails re-verifies a computed quote before it is released.
func CheckGuardrails(q *Quote) error {
	if q == nil || !q.Subtotal.IsPositive() {
		return ErrGuardrailViolation
	}
	if q.Total.LessThan(q.Subtotal.Decimal) {
		return fmt.Errorf("%w: total %s below subtotal %s", ErrGuardrailViolation, q.Total.StringFixed(2), q.Subtotal.StringFixed(2))
	}
	return nil
}
