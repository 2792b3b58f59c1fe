package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/garyjia/invoice-studio/internal/domain/entity"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{5, "5.00"},
		{1800, "1,800.00"},
		{1234567.891, "1,234,567.89"},
		{0.005, "0.01"},
		{2.675, "2.68"},
		{999.999, "1,000.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.in), "FormatAmount(%v)", tt.in)
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "INR 1,980.00", FormatMoney(entity.CountryIndia, 1980))
	assert.Equal(t, "JPY 180.00", FormatMoney(entity.CountryJapan, 180))
	assert.Equal(t, "INR 0.00", FormatMoney("", 0))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "05/03/2024", FormatDate("2024-03-05"))
	assert.Equal(t, "31/12/2023", FormatDate(" 2023-12-31 "))
	assert.Equal(t, "next week", FormatDate("next week"))
	assert.Equal(t, "", FormatDate(""))
}

func TestFormatRateAndHours(t *testing.T) {
	assert.Equal(t, "5.00%", FormatRate(5))
	assert.Equal(t, "8.25%", FormatRate(8.25))
	assert.Equal(t, "10.50", FormatHours(10.5))
}
