package entity

import (
	"strings"
	"time"
)

// Country selects the tax jurisdiction of an invoice
type Country string

// Normalize returns the country with the india default applied
func (c Country) Normalize() Country {
	switch Country(strings.ToLower(strings.TrimSpace(string(c)))) {
	case CountryJapan:
		return CountryJapan
	default:
		return CountryIndia
	}
}

// Currency returns the ISO currency code printed next to amounts
func (c Country) Currency() string {
	if c.Normalize() == CountryJapan {
		return "JPY"
	}
	return "INR"
}

// IsValid reports whether c is empty or a known country
func (c Country) IsValid() bool {
	switch Country(strings.ToLower(string(c))) {
	case "", CountryIndia, CountryJapan:
		return true
	}
	return false
}

// Invoice is a billable record for one employee or client.
// Dates are ISO calendar dates (YYYY-MM-DD).
type Invoice struct {
	ID              string        `json:"id"`
	InvoiceNumber   string        `json:"invoiceNumber"`
	Date            string        `json:"date"`
	DueDate         string        `json:"dueDate,omitempty"`
	EmployeeName    string        `json:"employeeName"`
	EmployeeID      string        `json:"employeeId,omitempty"`
	EmployeeEmail   string        `json:"employeeEmail,omitempty"`
	EmployeeAddress string        `json:"employeeAddress,omitempty"`
	EmployeeMobile  string        `json:"employeeMobile,omitempty"`
	Services        []ServiceItem `json:"services"`
	TaxRate         float64       `json:"taxRate"`
	Country         Country       `json:"country,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// ServiceItem is one billed line. Slice order is rendering order.
type ServiceItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`
	Rate        float64 `json:"rate"`
}

// Amount returns hours x rate without rounding
func (s ServiceItem) Amount() float64 {
	return s.Hours * s.Rate
}

// IssueDate parses Date, returning the zero time when it is not an ISO date
func (i *Invoice) IssueDate() time.Time {
	t, err := time.Parse(DateLayout, strings.TrimSpace(i.Date))
	if err != nil {
		return time.Time{}
	}
	return t
}

// InvoiceFilter narrows invoice searches
type InvoiceFilter struct {
	Query      string  `form:"q"`
	EmployeeID string  `form:"employeeId"`
	Country    Country `form:"country"`
	DateFrom   string  `form:"from"`
	DateTo     string  `form:"to"`
	Limit      int     `form:"limit"`
	Offset     int     `form:"offset"`
}
