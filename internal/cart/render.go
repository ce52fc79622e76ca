package cart

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/noah-isme/toko-tierprice/internal/pricing"
)

var fragments = template.Must(template.New("fragments").Parse(`
{{- define "unit" -}}
{{.Display.Price}}{{if .Display.Discounted}} <small class="dynamic-price-discount">({{.Label}}: {{.Display.BasePrice}})</small>{{end}}
{{- end -}}
{{- define "subtotal" -}}
{{if .HasDiscount -}}
<div class="dynamic-cart-price-details"><del class="original-total">{{.Original}}</del><br><span class="discount-amount">{{.Discount}}</span><br><strong class="final-price">{{.Final}}</strong></div>
{{- else -}}
{{.Final}}
{{- end -}}
<div class="dynamic-price-details"><small>{{.Breakdown}}</small></div>
{{- end -}}
`))

// RenderUnitPrice renders a unit price display as an HTML fragment.
func RenderUnitPrice(f pricing.Formatter, d pricing.UnitPriceDisplay) (template.HTML, error) {
	return execute("unit", struct {
		Display pricing.UnitPriceDisplay
		Label   string
	}{Display: d, Label: f.ReferenceLabel()})
}

// RenderLineSubtotal renders a subtotal display as an HTML fragment.
func RenderLineSubtotal(d pricing.SubtotalDisplay) (template.HTML, error) {
	return execute("subtotal", d)
}

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
