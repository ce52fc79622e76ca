package pricing

import "github.com/shopspring/decimal"

// Resolution describes which price applied to a quantity.
// Threshold is zero when the base price was used.
type Resolution struct {
	UnitPrice decimal.Decimal
	Threshold int
}

// Resolve returns the unit price for qty. The highest tier whose threshold is
// <= qty wins; below every threshold the base price applies. The boolean is
// false when the variant has no tiers, in which case the caller should leave
// the host price untouched.
func Resolve(p VariantPricing, qty int) (decimal.Decimal, bool) {
	res, ok := ResolveTier(p, qty)
	if !ok {
		return decimal.Zero, false
	}
	return res.UnitPrice, true
}

// ResolveTier is Resolve with the matched threshold attached.
func ResolveTier(p VariantPricing, qty int) (Resolution, bool) {
	if len(p.Tiers) == 0 {
		return Resolution{}, false
	}
	res := Resolution{UnitPrice: p.BasePrice}
	for _, t := range p.Tiers {
		if t.Threshold <= 0 || t.Threshold > qty || t.UnitPrice.IsNegative() {
			continue
		}
		if t.Threshold > res.Threshold || (t.Threshold == res.Threshold && t.UnitPrice.GreaterThan(res.UnitPrice)) {
			res = Resolution{UnitPrice: t.UnitPrice, Threshold: t.Threshold}
		}
	}
	return res, true
}
