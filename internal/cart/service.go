package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/toko-tierprice/internal/obs"
	"github.com/noah-isme/toko-tierprice/internal/pricing"
	"github.com/noah-isme/toko-tierprice/internal/tierstore"
)

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// Touchpoints label where pricing was requested.
const (
	TouchpointProduct = "product"
	TouchpointCart    = "cart"
	TouchpointAdd     = "add"
	TouchpointUpdate  = "update"
)

// PricingSource supplies variant pricing records.
type PricingSource interface {
	Load(ctx context.Context, variantID uuid.UUID) (tierstore.Record, error)
}

// Service prices product displays and cart lines and gates cart mutations.
type Service struct {
	source      PricingSource
	engine      *pricing.Engine
	logger      zerolog.Logger
	metrics     *obs.PricingMetrics
	maxLines    int
	concurrency int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Source      PricingSource
	Engine      *pricing.Engine
	Logger      zerolog.Logger
	Metrics     *obs.PricingMetrics
	MaxLines    int
	Concurrency int
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Source == nil {
		return nil, errors.New("cart: pricing source is required")
	}
	if cfg.Engine == nil {
		return nil, errors.New("cart: pricing engine is required")
	}
	if cfg.MaxLines <= 0 {
		cfg.MaxLines = 100
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Service{
		source:      cfg.Source,
		engine:      cfg.Engine,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		maxLines:    cfg.MaxLines,
		concurrency: cfg.Concurrency,
	}, nil
}

// Engine exposes the pricing engine used by the service.
func (s *Service) Engine() *pricing.Engine { return s.engine }

// ProductPrice is the product page view of a variant at a quantity.
type ProductPrice struct {
	VariantID        string                    `json:"variantId"`
	Tiered           bool                      `json:"tiered"`
	Quantity         int                       `json:"quantity"`
	UnitPrice        *decimal.Decimal          `json:"unitPrice,omitempty"`
	AppliedThreshold int                       `json:"appliedThreshold,omitempty"`
	Unit             *pricing.UnitPriceDisplay `json:"unit,omitempty"`
	Tiers            []pricing.Tier            `json:"tiers,omitempty"`
	Input            *pricing.InputArgs        `json:"input,omitempty"`
}

// ProductPrice resolves the unit price shown on a product page. Unknown and
// untiered variants come back with Tiered false.
func (s *Service) ProductPrice(ctx context.Context, variantID uuid.UUID, qty int) (ProductPrice, error) {
	view := ProductPrice{VariantID: variantID.String(), Quantity: qty}
	rec, found, err := s.load(ctx, variantID)
	if err != nil {
		return ProductPrice{}, err
	}
	if !found {
		s.metrics.ObserveResolution(TouchpointProduct, "not_found")
		return view, nil
	}

	input := s.engine.QuantityInput(rec.Pricing, qty, true)
	view.Input = &input

	line, ok := s.engine.Compute(rec.Pricing, qty)
	if !ok {
		s.metrics.ObserveResolution(TouchpointProduct, "not_applicable")
		return view, nil
	}
	s.metrics.ObserveResolution(TouchpointProduct, outcome(line))

	unit := s.engine.FormatUnitPrice(line)
	view.Tiered = true
	view.UnitPrice = &line.UnitPrice
	view.AppliedThreshold = line.AppliedThreshold
	view.Unit = &unit
	view.Tiers = rec.Pricing.Tiers
	return view, nil
}

// LineRequest is one cart line to price.
type LineRequest struct {
	VariantID uuid.UUID
	Quantity  int
}

// LineQuote is the priced form of a cart line.
type LineQuote struct {
	VariantID   string                    `json:"variantId"`
	ProductName string                    `json:"productName,omitempty"`
	Quantity    int                       `json:"quantity"`
	Tiered      bool                      `json:"tiered"`
	Line        *pricing.LineResult       `json:"line,omitempty"`
	Unit        *pricing.UnitPriceDisplay `json:"unit,omitempty"`
	Subtotal    *pricing.SubtotalDisplay  `json:"subtotal,omitempty"`
}

// QuoteResult holds priced lines in request order with a summary of the tiered ones.
type QuoteResult struct {
	Lines   []LineQuote     `json:"lines"`
	Summary pricing.Summary `json:"summary"`
}

// QuoteLines prices cart lines concurrently. Lines without tier pricing pass
// through untouched with Tiered false.
func (s *Service) QuoteLines(ctx context.Context, lines []LineRequest) (QuoteResult, error) {
	if len(lines) == 0 {
		return QuoteResult{}, fmt.Errorf("%w: at least one line is required", ErrInvalidInput)
	}
	if len(lines) > s.maxLines {
		return QuoteResult{}, fmt.Errorf("%w: at most %d lines per quote", ErrInvalidInput, s.maxLines)
	}

	quotes := make([]LineQuote, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, req := range lines {
		g.Go(func() error {
			q, err := s.quoteLine(gctx, req)
			if err != nil {
				return err
			}
			quotes[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return QuoteResult{}, err
	}

	priced := make([]pricing.LineResult, 0, len(quotes))
	for _, q := range quotes {
		if q.Line != nil {
			priced = append(priced, *q.Line)
		}
	}
	return QuoteResult{Lines: quotes, Summary: pricing.Summarize(priced)}, nil
}

func (s *Service) quoteLine(ctx context.Context, req LineRequest) (LineQuote, error) {
	q := LineQuote{VariantID: req.VariantID.String(), Quantity: req.Quantity}
	rec, found, err := s.load(ctx, req.VariantID)
	if err != nil {
		return LineQuote{}, err
	}
	if !found {
		s.metrics.ObserveResolution(TouchpointCart, "not_found")
		return q, nil
	}
	q.ProductName = rec.ProductName

	line, ok := s.engine.Compute(rec.Pricing, req.Quantity)
	if !ok {
		s.metrics.ObserveResolution(TouchpointCart, "not_applicable")
		return q, nil
	}
	s.metrics.ObserveResolution(TouchpointCart, outcome(line))

	unit := s.engine.FormatUnitPrice(line)
	subtotal := s.engine.FormatLineSubtotal(line)
	q.Tiered = true
	q.Line = &line
	q.Unit = &unit
	q.Subtotal = &subtotal
	return q, nil
}

// GateResult is the outcome of a cart mutation gate.
type GateResult struct {
	VariantID  string                   `json:"variantId"`
	Quantity   int                      `json:"quantity"`
	Passed     bool                     `json:"passed"`
	Validation pricing.ValidationResult `json:"validation"`
	Notice     string                   `json:"notice,omitempty"`
}

// ValidateAdd checks a quantity before it is added to the cart.
func (s *Service) ValidateAdd(ctx context.Context, variantID uuid.UUID, qty int) (GateResult, error) {
	return s.gate(ctx, TouchpointAdd, variantID, qty)
}

// ValidateUpdate checks a quantity before a cart line is changed to it.
func (s *Service) ValidateUpdate(ctx context.Context, variantID uuid.UUID, qty int) (GateResult, error) {
	return s.gate(ctx, TouchpointUpdate, variantID, qty)
}

func (s *Service) gate(ctx context.Context, touchpoint string, variantID uuid.UUID, qty int) (GateResult, error) {
	out := GateResult{VariantID: variantID.String(), Quantity: qty}
	rec, found, err := s.load(ctx, variantID)
	if err != nil {
		return GateResult{}, err
	}
	if !found {
		out.Passed = true
		out.Validation = pricing.ValidationResult{Passed: true}
		s.metrics.ObserveGate(touchpoint, "passed")
		return out, nil
	}

	res := s.engine.Validate(rec.Pricing, qty)
	out.Passed = res.Passed
	out.Validation = res
	if res.Passed {
		s.metrics.ObserveGate(touchpoint, "passed")
		return out, nil
	}
	out.Notice = Notice(rec.ProductName, res)
	s.metrics.ObserveGate(touchpoint, string(res.Reason))
	s.logger.Info().
		Str("touchpoint", touchpoint).
		Str("variant_id", out.VariantID).
		Int("quantity", qty).
		Str("reason", string(res.Reason)).
		Msg("cart mutation rejected")
	return out, nil
}

// Notice builds the shopper-facing message for a failed validation.
func Notice(productName string, res pricing.ValidationResult) string {
	if productName == "" {
		productName = "this product"
	}
	switch res.Reason {
	case pricing.ReasonBelowMinimum:
		return fmt.Sprintf("Minimum quantity for \"%s\" is %d.", productName, res.Minimum)
	case pricing.ReasonNotMultiple:
		corrected := res.Minimum
		if res.CorrectedQuantity != nil {
			corrected = *res.CorrectedQuantity
		}
		return fmt.Sprintf("Quantity for \"%s\" must be a multiple of %d. Suggested quantity: %d.", productName, res.Minimum, corrected)
	default:
		return ""
	}
}

// load maps a missing record to found=false.
func (s *Service) load(ctx context.Context, variantID uuid.UUID) (tierstore.Record, bool, error) {
	rec, err := s.source.Load(ctx, variantID)
	if err != nil {
		if errors.Is(err, tierstore.ErrNotFound) {
			return tierstore.Record{}, false, nil
		}
		return tierstore.Record{}, false, fmt.Errorf("load pricing for %s: %w", variantID, err)
	}
	return rec, true, nil
}

func outcome(line pricing.LineResult) string {
	if line.AppliedThreshold > 0 {
		return "tier"
	}
	return "base"
}
