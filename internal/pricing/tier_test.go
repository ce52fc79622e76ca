package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeSortsAndFilters(t *testing.T) {
	tiers, dropped := Normalize([]Tier{
		tier(t, 50, "80"),
		tier(t, 0, "70"),
		tier(t, 10, "-1"),
		tier(t, 10, "90"),
		tier(t, 10, "95"),
		tier(t, 1, "100"),
	})

	require.Len(t, tiers, 3)
	require.Equal(t, []int{1, 10, 50}, []int{tiers[0].Threshold, tiers[1].Threshold, tiers[2].Threshold})
	require.Equal(t, "95", tiers[1].UnitPrice.String())

	reasons := map[DropReason]int{}
	for _, d := range dropped {
		reasons[d.Reason]++
	}
	require.Equal(t, map[DropReason]int{
		DropNonPositiveThreshold: 1,
		DropNegativePrice:        1,
		DropDuplicateThreshold:   1,
	}, reasons)
}

func TestNormalizeEmpty(t *testing.T) {
	tiers, dropped := Normalize(nil)
	require.Empty(t, tiers)
	require.Empty(t, dropped)
}

func TestVariantNormalized(t *testing.T) {
	p := VariantPricing{
		BasePrice:            dec(t, "-3"),
		MinimumOrderQuantity: -2,
		Tiers:                []Tier{tier(t, -1, "5")},
	}
	norm, dropped := p.Normalized()
	require.False(t, norm.HasTieredPricing())
	require.Zero(t, norm.MinimumOrderQuantity)
	require.True(t, norm.BasePrice.IsZero())
	require.Len(t, dropped, 1)
	require.Len(t, p.Tiers, 1)
}
