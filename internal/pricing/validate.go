package pricing

// Reason identifies why a quantity was rejected.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonBelowMinimum Reason = "below_minimum"
	ReasonNotMultiple  Reason = "not_multiple"
)

// ValidationResult is the outcome of checking a quantity against the
// minimum order quantity. CorrectedQuantity is only set for ReasonNotMultiple.
type ValidationResult struct {
	Passed            bool   `json:"passed"`
	Reason            Reason `json:"reason,omitempty"`
	Minimum           int    `json:"minimum,omitempty"`
	CorrectedQuantity *int   `json:"correctedQuantity,omitempty"`
}

// Validate checks qty against the minimum order quantity of p, which also acts
// as the required multiple. A minimum of 0 or 1 means no constraint.
func Validate(p VariantPricing, qty int) ValidationResult {
	moq := p.MinimumOrderQuantity
	if moq <= 1 {
		return ValidationResult{Passed: true}
	}
	if qty < moq {
		return ValidationResult{Reason: ReasonBelowMinimum, Minimum: moq}
	}
	if qty%moq != 0 {
		corrected := ((qty + moq - 1) / moq) * moq
		return ValidationResult{Reason: ReasonNotMultiple, Minimum: moq, CorrectedQuantity: &corrected}
	}
	return ValidationResult{Passed: true, Minimum: moq}
}

// InputArgs are the constraints a quantity input should carry.
type InputArgs struct {
	Min   int `json:"min"`
	Step  int `json:"step"`
	Value int `json:"value"`
}

// QuantityInput derives quantity input constraints for p. On the product page
// the suggested value is raised to the minimum; in the cart the current
// quantity is kept so the real line quantity stays visible.
func QuantityInput(p VariantPricing, current int, productPage bool) InputArgs {
	step := p.MinimumOrderQuantity
	if step < 1 {
		step = 1
	}
	args := InputArgs{Min: step, Step: step, Value: current}
	if productPage && args.Value < step {
		args.Value = step
	}
	if args.Value < 1 {
		args.Value = 1
	}
	return args
}
