package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/garyjia/invoice-studio/internal/domain/entity"
)

const epsilon = 1e-9

func twoServices() []entity.ServiceItem {
	return []entity.ServiceItem{
		{ID: "a", Description: "Design", Hours: 10, Rate: 100},
		{ID: "b", Description: "Review", Hours: 5, Rate: 80},
	}
}

func TestCompute_India(t *testing.T) {
	b := Compute(SubTotal(twoServices()), 10, entity.CountryIndia)

	assert.InDelta(t, 1800, b.SubTotal, epsilon)
	assert.InDelta(t, 5, b.CGSTRate, epsilon)
	assert.InDelta(t, 5, b.SGSTRate, epsilon)
	assert.InDelta(t, 90, b.CGSTAmount, epsilon)
	assert.InDelta(t, 90, b.SGSTAmount, epsilon)
	assert.InDelta(t, 180, b.TaxAmount, epsilon)
	assert.InDelta(t, 1980, b.GrandTotal, epsilon)
	assert.Zero(t, b.ConsumptionTaxRate)
}

func TestCompute_Japan(t *testing.T) {
	b := Compute(SubTotal(twoServices()), 10, entity.CountryJapan)

	assert.InDelta(t, 1800, b.SubTotal, epsilon)
	assert.InDelta(t, 10, b.ConsumptionTaxRate, epsilon)
	assert.InDelta(t, 180, b.ConsumptionTaxAmount, epsilon)
	assert.InDelta(t, 1980, b.GrandTotal, epsilon)
	assert.Zero(t, b.CGSTRate)
	assert.Zero(t, b.SGSTAmount)
}

func TestCompute_DefaultsToIndia(t *testing.T) {
	b := Compute(100, 18, "")
	assert.Equal(t, entity.CountryIndia, b.Country)
	assert.InDelta(t, 9, b.CGSTRate, epsilon)
}

func TestCompute_Properties(t *testing.T) {
	subTotals := []float64{0, 0.01, 1, 99.99, 1800, 123456.78}
	rates := []float64{0, 0.5, 5, 8, 10, 18, 28, 100}

	for _, sub := range subTotals {
		for _, rate := range rates {
			in := Compute(sub, rate, entity.CountryIndia)
			assert.InDelta(t, sub*rate/200, in.CGSTAmount, 1e-6)
			assert.InDelta(t, in.CGSTAmount, in.SGSTAmount, epsilon)
			assert.InDelta(t, in.GrandTotal, in.CGSTAmount+in.SGSTAmount+in.SubTotal, 1e-6)

			jp := Compute(sub, rate, entity.CountryJapan)
			assert.InDelta(t, sub*rate/100, jp.ConsumptionTaxAmount, 1e-6)
			assert.InDelta(t, jp.GrandTotal, jp.SubTotal+jp.ConsumptionTaxAmount, 1e-6)
		}
	}
}

func TestBreakdown_Lines(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		country entity.Country
		want    []LineKind
	}{
		{name: "india with tax", rate: 18, country: entity.CountryIndia, want: []LineKind{LineCGST, LineSGST}},
		{name: "india zero rate", rate: 0, country: entity.CountryIndia, want: nil},
		{name: "japan with tax", rate: 10, country: entity.CountryJapan, want: []LineKind{LineConsumptionTax}},
		{name: "japan zero rate", rate: 0, country: entity.CountryJapan, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var kinds []LineKind
			for _, l := range Compute(1000, tt.rate, tt.country).Lines() {
				kinds = append(kinds, l.Kind)
			}
			assert.Equal(t, tt.want, kinds)
		})
	}
}

func TestSubTotal_Empty(t *testing.T) {
	b := ForInvoice(&entity.Invoice{TaxRate: 10})
	assert.Zero(t, b.SubTotal)
	assert.Zero(t, b.GrandTotal)
}
