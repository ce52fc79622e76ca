package pricing

import "github.com/shopspring/decimal"

// Quote bundles a priced line with its display forms.
type Quote struct {
	Line     LineResult       `json:"line"`
	Unit     UnitPriceDisplay `json:"unit"`
	Subtotal SubtotalDisplay  `json:"subtotal"`
}

// Engine is the pricing capability handed to host call sites. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	formatter Formatter
}

// NewEngine constructs an Engine rendering with f.
func NewEngine(f Formatter) *Engine {
	return &Engine{formatter: f}
}

// Formatter returns the formatter used for display output.
func (e *Engine) Formatter() Formatter {
	if e == nil {
		return Formatter{}
	}
	return e.formatter
}

// Resolve delegates to Resolve.
func (e *Engine) Resolve(p VariantPricing, qty int) (decimal.Decimal, bool) {
	return Resolve(p, qty)
}

// Compute delegates to Compute.
func (e *Engine) Compute(p VariantPricing, qty int) (LineResult, bool) {
	return Compute(p, qty)
}

// Validate delegates to Validate.
func (e *Engine) Validate(p VariantPricing, qty int) ValidationResult {
	return Validate(p, qty)
}

// QuantityInput delegates to QuantityInput.
func (e *Engine) QuantityInput(p VariantPricing, current int, productPage bool) InputArgs {
	return QuantityInput(p, current, productPage)
}

// FormatUnitPrice renders the unit price of l.
func (e *Engine) FormatUnitPrice(l LineResult) UnitPriceDisplay {
	return e.Formatter().FormatUnitPrice(l)
}

// FormatLineSubtotal renders the subtotal of l.
func (e *Engine) FormatLineSubtotal(l LineResult) SubtotalDisplay {
	return e.Formatter().FormatLineSubtotal(l)
}

// Quote prices and renders a line. The boolean is false when p has no tiers.
func (e *Engine) Quote(p VariantPricing, qty int) (Quote, bool) {
	line, ok := Compute(p, qty)
	if !ok {
		return Quote{}, false
	}
	f := e.Formatter()
	return Quote{
		Line:     line,
		Unit:     f.FormatUnitPrice(line),
		Subtotal: f.FormatLineSubtotal(line),
	}, true
}
