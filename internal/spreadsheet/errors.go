package spreadsheet

import "errors"

var (
	// ErrNotWorkbook is returned when the upload is not an xlsx file
	ErrNotWorkbook = errors.New("not an xlsx workbook")
	// ErrMissingColumns is returned when a required header is absent
	ErrMissingColumns = errors.New("missing required columns")
	// ErrNoRows is returned for workbooks without data rows
	ErrNoRows = errors.New("no data rows")
	// ErrInvalidCell wraps unparseable numbers and dates
	ErrInvalidCell = errors.New("invalid cell value")
)
