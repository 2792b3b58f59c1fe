package spreadsheet

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/internal/domain/tax"
)

const historySheet = "History"

// HistoryColumns are the export headers
var HistoryColumns = []string{
	ColInvoiceNumber, ColDate, ColDueDate, ColEmployeeName, ColEmployeeID,
	ColCountry, "Services", "Subtotal", "Tax", "Grand Total", "Currency",
}

// ExportHistory writes one row per invoice with totals rounded to two decimals
func ExportHistory(invoices []*entity.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), historySheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeHeader(f, historySheet, HistoryColumns); err != nil {
		return nil, err
	}

	for i, inv := range invoices {
		b := tax.ForInvoice(inv)
		row := []interface{}{
			inv.InvoiceNumber,
			inv.Date,
			inv.DueDate,
			inv.EmployeeName,
			inv.EmployeeID,
			string(b.Country),
			len(inv.Services),
			round2(b.SubTotal),
			round2(b.TaxAmount),
			round2(b.GrandTotal),
			b.Country.Currency(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(historySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
