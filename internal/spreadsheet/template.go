package spreadsheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const templateSheet = "Invoices"

// Template returns an empty import workbook with headers and one example row
func Template() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), templateSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeHeader(f, templateSheet, Columns); err != nil {
		return nil, err
	}

	example := []interface{}{
		"INV-001", "2024-01-15", "2024-02-14", "Jane Doe", "EMP-001",
		"jane@example.com", "12 MG Road, Bengaluru", "+91 98765 43210",
		"Consulting services", 10, 1500, 18, "india",
	}
	if err := f.SetSheetRow(templateSheet, "A2", &example); err != nil {
		return nil, fmt.Errorf("failed to write example row: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
