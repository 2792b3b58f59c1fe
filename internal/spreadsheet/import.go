package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-studio/internal/domain/entity"
)

// Importer reads invoices from the first sheet of a workbook
type Importer struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewImporter creates an importer
func NewImporter(logger *zap.Logger) *Importer {
	return &Importer{
		logger: logger,
		now:    time.Now,
	}
}

// Import parses r. Headers match case-insensitively; rows sharing an invoice
// number become one invoice, in order of first appearance.
func (im *Importer) Import(r io.Reader) ([]*entity.Invoice, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoRows
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrNoRows
	}

	index := headerIndex(rows[0])
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[strings.ToLower(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var invoices []*entity.Invoice
	byNumber := make(map[string]*entity.Invoice)

	for i, row := range rows[1:] {
		line := i + 2
		cell := func(col string) string {
			idx, ok := index[strings.ToLower(col)]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		if blankRow(row) {
			continue
		}

		hours, err := parseNumber(cell(ColHours))
		if err != nil {
			return nil, fmt.Errorf("row %d, %s: %w", line, ColHours, err)
		}
		rate, err := parseNumber(cell(ColRate))
		if err != nil {
			return nil, fmt.Errorf("row %d, %s: %w", line, ColRate, err)
		}

		description := cell(ColDescription)
		if description == "" && hours == 0 {
			continue
		}

		number := cell(ColInvoiceNumber)
		if number == "" {
			return nil, fmt.Errorf("row %d: %w: %s is empty", line, ErrInvalidCell, ColInvoiceNumber)
		}

		inv, ok := byNumber[number]
		if !ok {
			inv, err = im.newInvoice(number, cell)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", line, err)
			}
			byNumber[number] = inv
			invoices = append(invoices, inv)
		}

		inv.Services = append(inv.Services, entity.ServiceItem{
			Description: description,
			Hours:       hours,
			Rate:        rate,
		})
	}

	if len(invoices) == 0 {
		return nil, ErrNoRows
	}

	im.logger.Info("Spreadsheet imported",
		zap.String("sheet", sheets[0]),
		zap.Int("rows", len(rows)-1),
		zap.Int("invoices", len(invoices)))
	return invoices, nil
}

func (im *Importer) newInvoice(number string, cell func(string) string) (*entity.Invoice, error) {
	date, err := parseDate(cell(ColDate))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ColDate, err)
	}
	if date == "" {
		date = im.now().Format(entity.DateLayout)
	}
	due, err := parseDate(cell(ColDueDate))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ColDueDate, err)
	}
	taxRate, err := parseNumber(cell(ColTaxRate))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ColTaxRate, err)
	}

	name := cell(ColEmployeeName)
	if name == "" {
		name = entity.NotApplicable
	}

	return &entity.Invoice{
		InvoiceNumber:   number,
		Date:            date,
		DueDate:         due,
		EmployeeName:    name,
		EmployeeID:      cell(ColEmployeeID),
		EmployeeEmail:   cell(ColEmployeeEmail),
		EmployeeAddress: cell(ColEmployeeAddress),
		EmployeeMobile:  cell(ColEmployeeMobile),
		TaxRate:         taxRate,
		Country:         entity.Country(cell(ColCountry)),
	}, nil
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := index[key]; key != "" && !dup {
			index[key] = i
		}
	}
	return index
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseNumber accepts plain and comma-grouped numbers; blank is zero
func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidCell, s)
	}
	return v, nil
}

// parseDate accepts ISO dates and Excel date serials; blank stays blank
func parseDate(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if t, err := time.Parse(entity.DateLayout, s); err == nil {
		return t.Format(entity.DateLayout), nil
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return "", fmt.Errorf("%w: %q is not a date", ErrInvalidCell, s)
		}
		return t.Format(entity.DateLayout), nil
	}
	return "", fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidCell, s)
}
