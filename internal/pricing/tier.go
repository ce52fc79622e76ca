package pricing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tier is an "at least Threshold units" price breakpoint.
type Tier struct {
	Threshold int             `json:"threshold"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// VariantPricing is the read-only pricing input for a single variant.
type VariantPricing struct {
	VariantID            uuid.UUID       `json:"variantId"`
	BasePrice            decimal.Decimal `json:"basePrice"`
	Tiers                []Tier          `json:"tiers"`
	MinimumOrderQuantity int             `json:"minimumOrderQuantity"`
}

// HasTieredPricing reports whether any tier is configured.
func (p VariantPricing) HasTieredPricing() bool {
	return len(p.Tiers) > 0
}

// DropReason explains why a tier entry was discarded by Normalize.
type DropReason string

const (
	DropNonPositiveThreshold DropReason = "non_positive_threshold"
	DropNegativePrice        DropReason = "negative_price"
	DropDuplicateThreshold   DropReason = "duplicate_threshold"
)

// Dropped records a discarded tier entry.
type Dropped struct {
	Tier   Tier
	Reason DropReason
}

// Normalize sorts tiers ascending by threshold and removes malformed entries.
// When thresholds collide the entry with the larger unit price is kept.
func Normalize(tiers []Tier) ([]Tier, []Dropped) {
	var dropped []Dropped
	valid := make([]Tier, 0, len(tiers))
	for _, t := range tiers {
		switch {
		case t.Threshold <= 0:
			dropped = append(dropped, Dropped{Tier: t, Reason: DropNonPositiveThreshold})
		case t.UnitPrice.IsNegative():
			dropped = append(dropped, Dropped{Tier: t, Reason: DropNegativePrice})
		default:
			valid = append(valid, t)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].Threshold != valid[j].Threshold {
			return valid[i].Threshold < valid[j].Threshold
		}
		return valid[i].UnitPrice.GreaterThan(valid[j].UnitPrice)
	})

	out := make([]Tier, 0, len(valid))
	for _, t := range valid {
		if n := len(out); n > 0 && out[n-1].Threshold == t.Threshold {
			dropped = append(dropped, Dropped{Tier: t, Reason: DropDuplicateThreshold})
			continue
		}
		out = append(out, t)
	}
	return out, dropped
}

// Normalized returns a copy of p with normalised tiers and a non-negative minimum order quantity.
func (p VariantPricing) Normalized() (VariantPricing, []Dropped) {
	tiers, dropped := Normalize(p.Tiers)
	p.Tiers = tiers
	if p.MinimumOrderQuantity < 0 {
		p.MinimumOrderQuantity = 0
	}
	if p.BasePrice.IsNegative() {
		p.BasePrice = decimal.Zero
	}
	return p, dropped
}
