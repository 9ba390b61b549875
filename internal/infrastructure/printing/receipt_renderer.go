package printing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/vetclinic/backend/internal/domain/billing"
)

// HTMLReceiptRenderer renders visit receipts as self-contained HTML
// documents suitable for thermal printing or browser print dialogs.
type HTMLReceiptRenderer struct {
	tmpl       *template.Template
	clinicName string
}

// NewHTMLReceiptRenderer creates a renderer with the built-in template
func NewHTMLReceiptRenderer(clinicName string) (*HTMLReceiptRenderer, error) {
	funcMap := template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return d.StringFixed(2) + " BDT"
		},
		"qty": func(d decimal.Decimal) string {
			return d.String()
		},
		"positive": func(d decimal.Decimal) bool {
			return d.GreaterThan(decimal.Zero)
		},
	}
	tmpl, err := template.New("receipt").Funcs(funcMap).Parse(receiptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse receipt template: %w", err)
	}
	if clinicName == "" {
		clinicName = "Veterinary Clinic"
	}
	return &HTMLReceiptRenderer{tmpl: tmpl, clinicName: clinicName}, nil
}

// RenderVisitReceipt renders the receipt document for a visit
func (r *HTMLReceiptRenderer) RenderVisitReceipt(ctx context.Context, data billing.ReceiptData) ([]byte, error) {
	payload := struct {
		ClinicName string
		billing.ReceiptData
	}{
		ClinicName:  r.clinicName,
		ReceiptData: data,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, payload); err != nil {
		return nil, fmt.Errorf("failed to render receipt for %s: %w", data.VisitReference, err)
	}
	return buf.Bytes(), nil
}

const receiptTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Receipt {{.VisitReference}}</title>
<style>
body { font-family: monospace; font-size: 12px; width: 280px; margin: 0 auto; }
h1 { font-size: 14px; text-align: center; margin: 4px 0; }
table { width: 100%; border-collapse: collapse; }
td { padding: 2px 0; }
.num { text-align: right; }
.rule { border-top: 1px dashed #000; }
.total { font-weight: bold; }
</style>
</head>
<body>
<h1>{{.ClinicName}}</h1>
<p>
Receipt: {{.VisitReference}}<br>
Date: {{.Date}}<br>
Animal: {{.AnimalName}}<br>
Owner: {{.OwnerName}} ({{.OwnerPhone}})<br>
{{if .DoctorName}}Doctor: {{.DoctorName}}<br>{{end}}
</p>
<table>
{{range .Lines}}
<tr>
<td>{{.Description}} x{{qty .Quantity}}</td>
<td class="num">{{money .Subtotal}}</td>
</tr>
{{end}}
{{if positive .TreatmentCharge}}
<tr><td>Treatment Charge</td><td class="num">{{money .TreatmentCharge}}</td></tr>
{{end}}
<tr class="rule"><td>Subtotal</td><td class="num">{{money .Subtotal}}</td></tr>
{{if positive .DiscountPercent}}
<tr><td>Discount ({{qty .DiscountPercent}}%)</td><td></td></tr>
{{end}}
{{if positive .DiscountFixed}}
<tr><td>Discount</td><td class="num">-{{money .DiscountFixed}}</td></tr>
{{end}}
<tr class="total rule"><td>Total</td><td class="num">{{money .TotalAmount}}</td></tr>
<tr><td>Paid{{if .PaymentMethod}} ({{.PaymentMethod}}){{end}}</td><td class="num">{{money .PaidAmount}}</td></tr>
</table>
<p style="text-align:center">Thank you for your visit</p>
</body>
</html>
`
