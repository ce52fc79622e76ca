package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const defaultUnitDecimals = 2

// Formatter renders amounts for display. The zero value prints bare numbers
// with "." as the decimal separator and no grouping.
type Formatter struct {
	Symbol       string
	SymbolAfter  bool
	ThousandsSep string
	DecimalSep   string
	// UnitDecimals caps the fraction digits shown for unit prices; zero selects two.
	UnitDecimals int
	// BaseLabel prefixes the reference price note on discounted unit prices.
	BaseLabel string
}

// UnitPriceDisplay is the per-item price as shown on a cart line.
type UnitPriceDisplay struct {
	Price      string `json:"price"`
	BasePrice  string `json:"basePrice,omitempty"`
	Discounted bool   `json:"discounted"`
	Text       string `json:"text"`
}

// SubtotalDisplay is the line subtotal as shown on a cart line. Original is
// meant to be struck through and Final emphasised.
type SubtotalDisplay struct {
	HasDiscount bool   `json:"hasDiscount"`
	Original    string `json:"original,omitempty"`
	Discount    string `json:"discount,omitempty"`
	Final       string `json:"final"`
	Breakdown   string `json:"breakdown"`
	Text        string `json:"text"`
}

// FormatUnitPrice renders the resolved unit price, noting the base price when
// the line is discounted.
func (f Formatter) FormatUnitPrice(l LineResult) UnitPriceDisplay {
	d := UnitPriceDisplay{Price: f.Unit(l.UnitPrice)}
	d.Text = d.Price
	if l.UnitPrice.LessThan(l.BaseUnitPrice) {
		d.Discounted = true
		d.BasePrice = f.Unit(l.BaseUnitPrice)
		d.Text = fmt.Sprintf("%s (%s: %s)", d.Price, f.ReferenceLabel(), d.BasePrice)
	}
	return d
}

// FormatLineSubtotal renders the line total. With a discount the original
// total, the negative discount and the final total are all emitted.
func (f Formatter) FormatLineSubtotal(l LineResult) SubtotalDisplay {
	d := SubtotalDisplay{
		Final:     f.Total(l.TotalPrice),
		Breakdown: fmt.Sprintf("%s × %d = %s", f.Unit(l.UnitPrice), l.Quantity, f.Total(l.TotalPrice)),
	}
	parts := []string{d.Final, d.Breakdown}
	if l.DiscountAmount.IsPositive() {
		d.HasDiscount = true
		d.Original = f.Total(l.BaseTotal())
		d.Discount = "-" + f.Total(l.DiscountAmount)
		parts = []string{d.Original, d.Discount, d.Final, d.Breakdown}
	}
	d.Text = strings.Join(parts, "\n")
	return d
}

// Total formats a line-level amount in whole units.
func (f Formatter) Total(amount decimal.Decimal) string {
	return f.money(RoundTotal(amount))
}

// Unit formats a unit price with up to UnitDecimals fraction digits, trailing zeros trimmed.
func (f Formatter) Unit(amount decimal.Decimal) string {
	places := f.UnitDecimals
	if places == 0 {
		places = defaultUnitDecimals
	}
	if places < 0 {
		places = 0
	}
	return f.money(amount.Round(int32(places)))
}

func (f Formatter) money(amount decimal.Decimal) string {
	num := f.number(amount)
	if f.Symbol == "" {
		return num
	}
	if f.SymbolAfter {
		return num + " " + f.Symbol
	}
	if strings.HasPrefix(num, "-") {
		return "-" + f.Symbol + num[1:]
	}
	return f.Symbol + num
}

// number prints amount using the configured separators. String trims trailing
// fraction zeros.
func (f Formatter) number(amount decimal.Decimal) string {
	raw := amount.String()
	sign := ""
	if strings.HasPrefix(raw, "-") {
		sign = "-"
		raw = raw[1:]
	}
	intPart, frac, hasFrac := strings.Cut(raw, ".")
	if f.ThousandsSep != "" && len(intPart) > 3 {
		var b strings.Builder
		b.Grow(len(intPart) + len(intPart)/3*len(f.ThousandsSep))
		lead := len(intPart) % 3
		if lead == 0 {
			lead = 3
		}
		b.WriteString(intPart[:lead])
		for i := lead; i < len(intPart); i += 3 {
			b.WriteString(f.ThousandsSep)
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}
	if !hasFrac {
		return sign + intPart
	}
	sep := f.DecimalSep
	if sep == "" {
		sep = "."
	}
	return sign + intPart + sep + frac
}

// ReferenceLabel is the label printed before the base price on discounted lines.
func (f Formatter) ReferenceLabel() string {
	if strings.TrimSpace(f.BaseLabel) == "" {
		return "base price"
	}
	return f.BaseLabel
}
