package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/noah-isme/toko-tierprice/internal/cart"
	"github.com/noah-isme/toko-tierprice/internal/config"
	"github.com/noah-isme/toko-tierprice/internal/obs"
	"github.com/noah-isme/toko-tierprice/internal/pricing"
	"github.com/noah-isme/toko-tierprice/internal/ratelimit"
	"github.com/noah-isme/toko-tierprice/internal/tierstore"
)

type staticSource map[uuid.UUID]tierstore.Record

func (s staticSource) Load(_ context.Context, id uuid.UUID) (tierstore.Record, error) {
	rec, ok := s[id]
	if !ok {
		return tierstore.Record{}, tierstore.ErrNotFound
	}
	return rec, nil
}

type okChecker struct{}

func (okChecker) PingStore(context.Context) error { return nil }
func (okChecker) PingCache(context.Context) error { return nil }

func newTestRouter(t *testing.T, rate string) (http.Handler, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	source := staticSource{id: {ProductName: "Cups", Pricing: pricing.VariantPricing{
		VariantID: id,
		BasePrice: decimal.NewFromInt(1000),
		Tiers:     []pricing.Tier{{Threshold: 10, UnitPrice: decimal.NewFromInt(800)}},
	}}}

	reg := NewRegistry()
	engine := NewEngine(config.PriceFormat{CurrencySymbol: "$", ThousandsSep: ",", DecimalSep: "."})
	svc, err := cart.NewService(cart.ServiceConfig{
		Source:  source,
		Engine:  engine,
		Logger:  zerolog.Nop(),
		Metrics: obs.NewPricingMetrics("tierprice", reg),
	})
	require.NoError(t, err)

	lim, err := ratelimit.New(rate, memory.NewStore())
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Logger:          zerolog.Nop(),
		Cart:            svc,
		Checker:         okChecker{},
		Limiter:         lim,
		HTTPMetrics:     obs.NewHTTPMetrics("tierprice", nil, reg),
		MetricsRegistry: reg,
	})
	return router, id
}

func TestRouterServesPricingHealthAndMetrics(t *testing.T) {
	router, id := newTestRouter(t, "100-M")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/variants/"+id.String()+"/price?qty=12", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"text":"$800 (base price: $1,000)"`)
	require.Equal(t, "100", rr.Header().Get("X-RateLimit-Limit"))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	require.True(t, strings.Contains(body, `tierprice_price_resolutions_total{outcome="tier",touchpoint="product"} 1`), body)
	require.Contains(t, body, `tierprice_http_requests_total{method="GET",route="/api/v1/variants/{variantId}/price",status="200"} 1`)
}

func TestRouterRateLimitsAPI(t *testing.T) {
	router, id := newTestRouter(t, "1-M")
	target := "/api/v1/variants/" + id.String() + "/price"

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestProtectPprof(t *testing.T) {
	handler := protectPprof(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), "ops", "secret")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.SetBasicAuth("ops", "secret")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNoContent, rr.Code)
}
