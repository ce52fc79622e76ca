package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics counts tier pricing outcomes. A nil *PricingMetrics is a no-op.
type PricingMetrics struct {
	// Resolutions counts priced lines by touchpoint and outcome (tier, base, not_applicable).
	Resolutions *prometheus.CounterVec
	// Gates counts quantity gate decisions by touchpoint and result.
	Gates *prometheus.CounterVec
	// TierDropped counts malformed tier entries discarded on load.
	TierDropped *prometheus.CounterVec
	// CacheLookups counts tier cache lookups by result (hit, miss, error).
	CacheLookups *prometheus.CounterVec
}

// NewPricingMetrics registers the pricing collectors on reg (default registerer when nil).
func NewPricingMetrics(namespace string, reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PricingMetrics{
		Resolutions: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_resolutions_total",
			Help:      "Count of tier price resolutions by touchpoint and outcome.",
		}, []string{"touchpoint", "outcome"})),
		Gates: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quantity_gate_total",
			Help:      "Count of quantity gate decisions by touchpoint and result.",
		}, []string{"touchpoint", "result"})),
		TierDropped: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_entries_dropped_total",
			Help:      "Count of malformed tier entries discarded while loading variant pricing.",
		}, []string{"reason"})),
		CacheLookups: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_cache_lookups_total",
			Help:      "Count of tier cache lookups by result.",
		}, []string{"result"})),
	}
}

// ObserveResolution records a priced line.
func (m *PricingMetrics) ObserveResolution(touchpoint, outcome string) {
	if m == nil || m.Resolutions == nil {
		return
	}
	m.Resolutions.WithLabelValues(touchpoint, outcome).Inc()
}

// ObserveGate records a quantity gate decision.
func (m *PricingMetrics) ObserveGate(touchpoint, result string) {
	if m == nil || m.Gates == nil {
		return
	}
	m.Gates.WithLabelValues(touchpoint, result).Inc()
}

// ObserveDropped records a discarded tier entry.
func (m *PricingMetrics) ObserveDropped(reason string) {
	if m == nil || m.TierDropped == nil {
		return
	}
	m.TierDropped.WithLabelValues(reason).Inc()
}

// ObserveCache records a cache lookup.
func (m *PricingMetrics) ObserveCache(result string) {
	if m == nil || m.CacheLookups == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}
