package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/internal/spreadsheet"
)

const maxExportRows = 1000

// ImportResponse summarizes a spreadsheet import
type ImportResponse struct {
	Imported int               `json:"imported"`
	Invoices []*entity.Invoice `json:"invoices"`
}

// DownloadTemplate handles GET /api/spreadsheets/template
func (h *Handlers) DownloadTemplate(c *gin.Context) {
	data, err := spreadsheet.Template()
	if err != nil {
		h.fail(c, "failed to build template", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="invoice-template.xlsx"`)
	c.Data(http.StatusOK, spreadsheet.ContentTypeXLSX, data)
}

// ImportSpreadsheet handles POST /api/spreadsheets/import (multipart field "file")
func (h *Handlers) ImportSpreadsheet(c *gin.Context) {
	data, err := h.readUpload(c, "file")
	if err != nil {
		h.badRequest(c, "invalid spreadsheet upload", err)
		return
	}

	invoices, err := h.importer.Import(bytes.NewReader(data))
	if err != nil {
		h.fail(c, "failed to read spreadsheet", err)
		return
	}

	if err := h.invoices.Import(c.Request.Context(), invoices); err != nil {
		h.fail(c, "failed to import invoices", err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data: ImportResponse{
			Imported: len(invoices),
			Invoices: invoices,
		},
	})
}

// ExportSpreadsheet handles GET /api/spreadsheets/export
func (h *Handlers) ExportSpreadsheet(c *gin.Context) {
	var filter entity.InvoiceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.badRequest(c, "invalid query parameters", err)
		return
	}
	filter.Limit = maxExportRows
	filter.Offset = 0

	page, err := h.invoices.Search(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "failed to search invoices", err)
		return
	}

	invoices := make([]*entity.Invoice, 0, len(page.Items))
	for _, item := range page.Items {
		invoices = append(invoices, item.Invoice)
	}

	data, err := spreadsheet.ExportHistory(invoices)
	if err != nil {
		h.fail(c, "failed to export invoices", err)
		return
	}

	filename := fmt.Sprintf("invoice-history-%s.xlsx", time.Now().Format(entity.DateLayout))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, spreadsheet.ContentTypeXLSX, data)
}
