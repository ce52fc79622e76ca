package cart

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-tierprice/internal/pricing"
)

func TestRenderLineSubtotalWithDiscount(t *testing.T) {
	html, err := RenderLineSubtotal(pricing.SubtotalDisplay{
		HasDiscount: true,
		Original:    "1000",
		Discount:    "-200",
		Final:       "800",
		Breakdown:   "80 × 10 = 800",
	})
	require.NoError(t, err)
	require.Equal(t,
		`<div class="dynamic-cart-price-details"><del class="original-total">1000</del><br><span class="discount-amount">-200</span><br><strong class="final-price">800</strong></div>`+
			`<div class="dynamic-price-details"><small>80 × 10 = 800</small></div>`,
		string(html))
}

func TestRenderLineSubtotalWithoutDiscount(t *testing.T) {
	html, err := RenderLineSubtotal(pricing.SubtotalDisplay{Final: "100", Breakdown: "33.33 × 3 = 100"})
	require.NoError(t, err)
	require.Equal(t, `100<div class="dynamic-price-details"><small>33.33 × 3 = 100</small></div>`, string(html))
}

func TestRenderUnitPriceEscapes(t *testing.T) {
	f := pricing.Formatter{BaseLabel: "<b>base</b>"}
	html, err := RenderUnitPrice(f, pricing.UnitPriceDisplay{Price: "80", BasePrice: "100", Discounted: true})
	require.NoError(t, err)
	require.Equal(t, `80 <small class="dynamic-price-discount">(&lt;b&gt;base&lt;/b&gt;: 100)</small>`, string(html))

	html, err = RenderUnitPrice(pricing.Formatter{}, pricing.UnitPriceDisplay{Price: "100"})
	require.NoError(t, err)
	require.Equal(t, "100", string(html))
}
