package cart

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-tierprice/internal/common"
	"github.com/noah-isme/toko-tierprice/internal/pricing"
)

// Error codes returned by the cart gates.
const (
	CodeBelowMinimum = "QUANTITY_BELOW_MINIMUM"
	CodeNotMultiple  = "QUANTITY_NOT_MULTIPLE"
)

// Handler wires the pricing service to HTTP.
type Handler struct {
	svc      *Service
	validate *validator.Validate
	logger   zerolog.Logger
}

// HandlerConfig groups Handler dependencies.
type HandlerConfig struct {
	Service   *Service
	Validator *validator.Validate
	Logger    zerolog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	v := cfg.Validator
	if v == nil {
		v = validator.New()
	}
	return &Handler{svc: cfg.Service, validate: v, logger: cfg.Logger}
}

// Routes mounts the pricing endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/variants/{variantId}/price", h.ProductPrice)
	r.Post("/cart/lines/quote", h.QuoteLines)
	r.Post("/cart/items/validate", h.ValidateAdd)
	r.Post("/cart/items/{variantId}/validate-update", h.ValidateUpdate)
}

type productPriceResponse struct {
	ProductPrice
	HTML template.HTML `json:"html,omitempty"`
}

// ProductPrice returns the unit price for ?qty= units of a variant.
func (h *Handler) ProductPrice(w http.ResponseWriter, r *http.Request) {
	variantID, err := uuid.Parse(chi.URLParam(r, "variantId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid variant id", nil)
		return
	}
	qty := 1
	if raw := strings.TrimSpace(r.URL.Query().Get("qty")); raw != "" {
		qty, err = strconv.Atoi(raw)
		if err != nil || qty <= 0 {
			common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "qty must be a positive integer", nil)
			return
		}
	}

	view, err := h.svc.ProductPrice(r.Context(), variantID, qty)
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := productPriceResponse{ProductPrice: view}
	if wantsHTML(r) && view.Unit != nil {
		resp.HTML, err = RenderUnitPrice(h.svc.Engine().Formatter(), *view.Unit)
		if err != nil {
			h.writeError(w, err)
			return
		}
	}
	common.Data(w, http.StatusOK, resp)
}

type quoteLineRequest struct {
	VariantID string `json:"variantId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type quoteRequest struct {
	Lines []quoteLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type lineQuoteResponse struct {
	LineQuote
	UnitHTML     template.HTML `json:"unitHtml,omitempty"`
	SubtotalHTML template.HTML `json:"subtotalHtml,omitempty"`
}

// QuoteLines prices a batch of cart lines.
func (h *Handler) QuoteLines(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.writeError(w, common.ValidationError(err))
		return
	}

	lines := make([]LineRequest, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, LineRequest{VariantID: uuid.MustParse(l.VariantID), Quantity: l.Quantity})
	}
	result, err := h.svc.QuoteLines(r.Context(), lines)
	if err != nil {
		h.writeError(w, err)
		return
	}

	html := wantsHTML(r)
	out := make([]lineQuoteResponse, 0, len(result.Lines))
	for _, q := range result.Lines {
		item := lineQuoteResponse{LineQuote: q}
		if html && q.Tiered {
			if item.UnitHTML, err = RenderUnitPrice(h.svc.Engine().Formatter(), *q.Unit); err != nil {
				h.writeError(w, err)
				return
			}
			if item.SubtotalHTML, err = RenderLineSubtotal(*q.Subtotal); err != nil {
				h.writeError(w, err)
				return
			}
		}
		out = append(out, item)
	}
	common.Data(w, http.StatusOK, map[string]any{
		"lines":   out,
		"summary": result.Summary,
	})
}

type addRequest struct {
	VariantID string `json:"variantId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type updateRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// ValidateAdd gates an add-to-cart mutation.
func (h *Handler) ValidateAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.writeError(w, common.ValidationError(err))
		return
	}
	res, err := h.svc.ValidateAdd(r.Context(), uuid.MustParse(req.VariantID), req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeGate(w, res)
}

// ValidateUpdate gates a cart quantity change.
func (h *Handler) ValidateUpdate(w http.ResponseWriter, r *http.Request) {
	variantID, err := uuid.Parse(chi.URLParam(r, "variantId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid variant id", nil)
		return
	}
	var req updateRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.writeError(w, common.ValidationError(err))
		return
	}
	res, err := h.svc.ValidateUpdate(r.Context(), variantID, req.Quantity)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeGate(w, res)
}

func (h *Handler) writeGate(w http.ResponseWriter, res GateResult) {
	if res.Passed {
		common.Data(w, http.StatusOK, res)
		return
	}
	code := CodeNotMultiple
	if res.Validation.Reason == pricing.ReasonBelowMinimum {
		code = CodeBelowMinimum
	}
	common.JSONError(w, http.StatusUnprocessableEntity, code, res.Notice, res)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if _, ok := common.AsAppError(err); ok {
		common.WriteError(w, err)
		return
	}
	if errors.Is(err, ErrInvalidInput) {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, err.Error(), nil)
		return
	}
	h.logger.Error().Err(err).Msg("pricing request failed")
	common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "unable to price request", nil)
}

func wantsHTML(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("html")) {
	case "1", "true", "yes":
		return true
	}
	return false
}
