// Package tax computes invoice subtotals and jurisdiction-specific tax splits.
package tax

import "github.com/garyjia/invoice-studio/internal/domain/entity"

// LineKind identifies a displayed tax line
type LineKind string

// Tax line kinds
const (
	LineCGST           LineKind = "cgst"
	LineSGST           LineKind = "sgst"
	LineConsumptionTax LineKind = "consumption_tax"
)

// Line is one tax row shown between the subtotal and the grand total
type Line struct {
	Kind   LineKind
	Rate   float64
	Amount float64
}

// Breakdown is the derived tax result for one invoice.
// Amounts are unrounded; rounding happens only when formatting.
type Breakdown struct {
	Country    entity.Country `json:"country"`
	SubTotal   float64        `json:"subTotal"`
	TaxAmount  float64        `json:"taxAmount"`
	GrandTotal float64        `json:"grandTotal"`

	CGSTRate   float64 `json:"cgstRate,omitempty"`
	SGSTRate   float64 `json:"sgstRate,omitempty"`
	CGSTAmount float64 `json:"cgstAmount,omitempty"`
	SGSTAmount float64 `json:"sgstAmount,omitempty"`

	ConsumptionTaxRate   float64 `json:"consumptionTaxRate,omitempty"`
	ConsumptionTaxAmount float64 `json:"consumptionTaxAmount,omitempty"`
}

// SubTotal sums hours x rate over services
func SubTotal(services []entity.ServiceItem) float64 {
	var sum float64
	for _, s := range services {
		sum += s.Amount()
	}
	return sum
}

// Compute splits taxRate according to country. Inputs are not clamped.
func Compute(subTotal, taxRate float64, country entity.Country) Breakdown {
	country = country.Normalize()

	if country == entity.CountryJapan {
		amount := subTotal * (taxRate / 100)
		return Breakdown{
			Country:              country,
			SubTotal:             subTotal,
			TaxAmount:            amount,
			GrandTotal:           subTotal + amount,
			ConsumptionTaxRate:   taxRate,
			ConsumptionTaxAmount: amount,
		}
	}

	half := taxRate / 2
	cgst := subTotal * (half / 100)
	sgst := subTotal * (half / 100)
	return Breakdown{
		Country:    country,
		SubTotal:   subTotal,
		TaxAmount:  cgst + sgst,
		GrandTotal: subTotal + cgst + sgst,
		CGSTRate:   half,
		SGSTRate:   half,
		CGSTAmount: cgst,
		SGSTAmount: sgst,
	}
}

// ForInvoice computes the breakdown from an invoice's services, rate and country
func ForInvoice(inv *entity.Invoice) Breakdown {
	return Compute(SubTotal(inv.Services), inv.TaxRate, inv.Country)
}

// Lines returns the tax rows to display. Components with a zero rate are omitted.
func (b Breakdown) Lines() []Line {
	var lines []Line
	if b.Country == entity.CountryJapan {
		if b.ConsumptionTaxRate > 0 {
			lines = append(lines, Line{Kind: LineConsumptionTax, Rate: b.ConsumptionTaxRate, Amount: b.ConsumptionTaxAmount})
		}
		return lines
	}
	if b.CGSTRate > 0 {
		lines = append(lines, Line{Kind: LineCGST, Rate: b.CGSTRate, Amount: b.CGSTAmount})
	}
	if b.SGSTRate > 0 {
		lines = append(lines, Line{Kind: LineSGST, Rate: b.SGSTRate, Amount: b.SGSTAmount})
	}
	return lines
}
