package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}

func tier(t *testing.T, threshold int, price string) Tier {
	t.Helper()
	return Tier{Threshold: threshold, UnitPrice: dec(t, price)}
}

func sampleVariant(t *testing.T) VariantPricing {
	t.Helper()
	return VariantPricing{
		VariantID: uuid.MustParse("55555555-5555-5555-5555-555555555555"),
		BasePrice: dec(t, "100"),
		Tiers: []Tier{
			tier(t, 1, "100"),
			tier(t, 10, "90"),
			tier(t, 50, "80"),
		},
	}
}

func TestResolveThresholdSelection(t *testing.T) {
	p := sampleVariant(t)
	cases := []struct {
		qty  int
		want string
	}{
		{qty: 9, want: "100"},
		{qty: 10, want: "90"},
		{qty: 49, want: "90"},
		{qty: 50, want: "80"},
		{qty: 1000, want: "80"},
	}
	for _, tc := range cases {
		got, ok := Resolve(p, tc.qty)
		require.True(t, ok)
		require.True(t, got.Equal(dec(t, tc.want)), "qty %d: got %s want %s", tc.qty, got, tc.want)
	}
}

func TestResolveBelowEveryTierFallsBackToBase(t *testing.T) {
	p := VariantPricing{
		BasePrice: dec(t, "120"),
		Tiers:     []Tier{tier(t, 10, "90"), tier(t, 50, "80")},
	}
	got, ok := Resolve(p, 3)
	require.True(t, ok)
	require.Equal(t, "120", got.String())

	res, ok := ResolveTier(p, 3)
	require.True(t, ok)
	require.Zero(t, res.Threshold)
}

func TestResolveWithoutTiersIsNotApplicable(t *testing.T) {
	p := VariantPricing{BasePrice: dec(t, "100")}
	for _, qty := range []int{0, 1, 10, 500} {
		_, ok := Resolve(p, qty)
		require.False(t, ok)
	}
}

func TestResolveUnsortedAndDuplicateInput(t *testing.T) {
	p := VariantPricing{
		BasePrice: dec(t, "100"),
		Tiers: []Tier{
			tier(t, 50, "80"),
			tier(t, 10, "85"),
			tier(t, 10, "90"),
			tier(t, -5, "1"),
		},
	}
	got, ok := Resolve(p, 20)
	require.True(t, ok)
	require.Equal(t, "90", got.String())

	got, ok = Resolve(p, 60)
	require.True(t, ok)
	require.Equal(t, "80", got.String())
}

func TestResolveIsDeterministic(t *testing.T) {
	p := sampleVariant(t)
	first, _ := Resolve(p, 42)
	for i := 0; i < 10; i++ {
		again, ok := Resolve(p, 42)
		require.True(t, ok)
		require.Equal(t, first, again)
	}
	require.Len(t, p.Tiers, 3)
}

func TestResolveNonMonotonicTiers(t *testing.T) {
	p := VariantPricing{
		BasePrice: dec(t, "10"),
		Tiers:     []Tier{tier(t, 5, "8"), tier(t, 20, "9")},
	}
	low, _ := Resolve(p, 5)
	high, _ := Resolve(p, 20)
	require.Equal(t, "8", low.String())
	require.Equal(t, "9", high.String())
}
