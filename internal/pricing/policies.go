package pricing

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Policy keys read by the engine.
const (
	PolicyTaxRate       = "tax_rate"
	PolicyDamageWaiver  = "default_damage_waiver"
	PolicyTierDiscounts = "tier_discounts"
)

// Policies are the rules the engine applies. Raw keeps every stored policy so
// callers can echo unknown keys back unchanged.
type Policies struct {
	TaxPct          decimal.Decimal
	DamageWaiverPct decimal.Decimal
	TierDiscountPct map[string]decimal.Decimal
	Raw             map[string]json.RawMessage
}

type pctValue struct {
	Pct decimal.Decimal `json:"pct"`
}

// ParsePolicies decodes the keyed JSON policy map. Missing keys count as zero.
func ParsePolicies(raw map[string]json.RawMessage) (Policies, error) {
	p := Policies{
		TierDiscountPct: make(map[string]decimal.Decimal),
		Raw:             raw,
	}

	if v, ok := raw[PolicyTaxRate]; ok {
		var pv pctValue
		if err := json.Unmarshal(v, &pv); err != nil {
			return Policies{}, fmt.Errorf("decode %s: %w", PolicyTaxRate, err)
		}
		p.TaxPct = pv.Pct
	}
	if v, ok := raw[PolicyDamageWaiver]; ok {
		var pv pctValue
		if err := json.Unmarshal(v, &pv); err != nil {
			return Policies{}, fmt.Errorf("decode %s: %w", PolicyDamageWaiver, err)
		}
		p.DamageWaiverPct = pv.Pct
	}
	if v, ok := raw[PolicyTierDiscounts]; ok {
		var tiers map[string]pctValue
		if err := json.Unmarshal(v, &tiers); err != nil {
			return Policies{}, fmt.Errorf("decode %s: %w", PolicyTierDiscounts, err)
		}
		for tier, pv := range tiers {
			p.TierDiscountPct[tier] = pv.Pct
		}
	}
	return p, nil
}

// DiscountPct returns the tier discount, zero for unknown tiers.
func (p Policies) DiscountPct(tier string) decimal.Decimal {
	if pct, ok := p.TierDiscountPct[tier]; ok {
		return pct
	}
	return decimal.Zero
}
