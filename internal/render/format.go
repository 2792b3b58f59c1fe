package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/garyjia/invoice-studio/internal/domain/entity"
)

const displayDate = "02/01/2006"

var amountPrinter = message.NewPrinter(language.English)

// RoundAmount rounds half away from zero to two decimals. Only display code calls it.
func RoundAmount(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// FormatAmount renders v with thousands separators and two decimals, e.g. 12,345.60
func FormatAmount(v float64) string {
	rounded, _ := RoundAmount(v).Float64()
	return amountPrinter.Sprint(number.Decimal(rounded, number.Scale(2)))
}

// FormatMoney prefixes the formatted amount with the country's currency code
func FormatMoney(country entity.Country, v float64) string {
	return country.Currency() + " " + FormatAmount(v)
}

// FormatRate renders a percentage with two decimals, e.g. 5.00%
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate)
}

// FormatHours renders an hours value with two decimals
func FormatHours(hours float64) string {
	return fmt.Sprintf("%.2f", hours)
}

// FormatDate converts an ISO date to DD/MM/YYYY. Unparseable input is returned as given.
func FormatDate(iso string) string {
	iso = strings.TrimSpace(iso)
	t, err := time.Parse(entity.DateLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format(displayDate)
}
