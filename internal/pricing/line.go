package pricing

import "github.com/shopspring/decimal"

// LineResult is the priced breakdown of a single cart line.
type LineResult struct {
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	Quantity         int             `json:"quantity"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	BaseUnitPrice    decimal.Decimal `json:"baseUnitPrice"`
	DiscountAmount   decimal.Decimal `json:"discountAmount"`
	AppliedThreshold int             `json:"appliedThreshold"`
}

// BaseTotal is the undiscounted line total rounded like TotalPrice.
func (l LineResult) BaseTotal() decimal.Decimal {
	return RoundTotal(l.BaseUnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
}

// RoundTotal rounds a line amount to whole currency units, half away from zero.
// Unit prices are never rounded; only totals are.
func RoundTotal(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(0)
}

// Compute prices qty units of p. The boolean is false when p has no tiers.
func Compute(p VariantPricing, qty int) (LineResult, bool) {
	res, ok := ResolveTier(p, qty)
	if !ok {
		return LineResult{}, false
	}
	line := LineResult{
		UnitPrice:        res.UnitPrice,
		Quantity:         qty,
		TotalPrice:       RoundTotal(res.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))),
		BaseUnitPrice:    p.BasePrice,
		AppliedThreshold: res.Threshold,
	}
	discount := line.BaseTotal().Sub(line.TotalPrice)
	if !discount.IsPositive() {
		discount = decimal.Zero
	}
	line.DiscountAmount = discount
	return line, true
}

// Summary aggregates priced lines.
type Summary struct {
	Lines     int             `json:"lines"`
	Quantity  int             `json:"quantity"`
	BaseTotal decimal.Decimal `json:"baseTotal"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
}

// Summarize totals the provided lines. Lines with a non-positive quantity are skipped.
func Summarize(lines []LineResult) Summary {
	sum := Summary{BaseTotal: decimal.Zero, Discount: decimal.Zero, Total: decimal.Zero}
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		sum.Lines++
		sum.Quantity += l.Quantity
		sum.BaseTotal = sum.BaseTotal.Add(l.BaseTotal())
		sum.Discount = sum.Discount.Add(l.DiscountAmount)
		sum.Total = sum.Total.Add(l.TotalPrice)
	}
	return sum
}
