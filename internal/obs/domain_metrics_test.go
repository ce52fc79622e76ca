package obs_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-tierprice/internal/obs"
)

func TestPricingMetricsCounters(t *testing.T) {
	m := obs.NewPricingMetrics("tierprice", prometheus.NewRegistry())

	m.ObserveResolution("cart", "tier")
	m.ObserveResolution("cart", "tier")
	m.ObserveGate("add", "below_minimum")
	m.ObserveDropped("duplicate_threshold")
	m.ObserveCache("hit")

	require.Equal(t, float64(2), testutil.ToFloat64(m.Resolutions.WithLabelValues("cart", "tier")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.Gates.WithLabelValues("add", "below_minimum")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.TierDropped.WithLabelValues("duplicate_threshold")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
}

func TestNilPricingMetricsIsNoop(t *testing.T) {
	var m *obs.PricingMetrics
	require.NotPanics(t, func() {
		m.ObserveResolution("product", "base")
		m.ObserveGate("update", "passed")
		m.ObserveDropped("negative_price")
		m.ObserveCache("miss")
	})
}
