// Package spreadsheet imports invoices from and exports history to Excel workbooks
package spreadsheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Import columns, in template order
const (
	ColInvoiceNumber   = "Invoice Number"
	ColDate            = "Date"
	ColDueDate         = "Due Date"
	ColEmployeeName    = "Employee Name"
	ColEmployeeID      = "Employee ID"
	ColEmployeeEmail   = "Employee Email"
	ColEmployeeAddress = "Employee Address"
	ColEmployeeMobile  = "Employee Mobile"
	ColDescription     = "Description"
	ColHours           = "Hours"
	ColRate            = "Rate"
	ColTaxRate         = "Tax Rate"
	ColCountry         = "Country"
)

// ContentTypeXLSX is the MIME type of generated workbooks
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Columns lists the template headers
var Columns = []string{
	ColInvoiceNumber, ColDate, ColDueDate, ColEmployeeName, ColEmployeeID,
	ColEmployeeEmail, ColEmployeeAddress, ColEmployeeMobile, ColDescription,
	ColHours, ColRate, ColTaxRate, ColCountry,
}

// RequiredColumns must be present in every imported sheet
var RequiredColumns = []string{ColInvoiceNumber, ColEmployeeName, ColDescription}

// writeHeader writes bold headers into row 1 and sizes the columns
func writeHeader(f *excelize.File, sheet string, headers []string) error {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#F5F5F5"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 18)
}
