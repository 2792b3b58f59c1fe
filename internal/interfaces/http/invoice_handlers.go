package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/invoice-studio/internal/domain/entity"
)

const maxPageSize = 100

// SearchInvoices handles GET /api/invoices
func (h *Handlers) SearchInvoices(c *gin.Context) {
	var filter entity.InvoiceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.badRequest(c, "invalid query parameters", err)
		return
	}

	// Set defaults
	if filter.Limit <= 0 || filter.Limit > maxPageSize {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	page, err := h.invoices.Search(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, "failed to search invoices", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    page,
	})
}

// CreateInvoice handles POST /api/invoices
func (h *Handlers) CreateInvoice(c *gin.Context) {
	var inv entity.Invoice
	if err := c.ShouldBindJSON(&inv); err != nil {
		h.badRequest(c, "invalid invoice body", err)
		return
	}

	if err := h.invoices.Create(c.Request.Context(), &inv); err != nil {
		h.fail(c, "failed to create invoice", err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    &inv,
	})
}

// GetInvoice handles GET /api/invoices/:id
func (h *Handlers) GetInvoice(c *gin.Context) {
	inv, err := h.invoices.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "failed to get invoice", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    inv,
	})
}

// UpdateInvoice handles PUT /api/invoices/:id
func (h *Handlers) UpdateInvoice(c *gin.Context) {
	var inv entity.Invoice
	if err := c.ShouldBindJSON(&inv); err != nil {
		h.badRequest(c, "invalid invoice body", err)
		return
	}

	if err := h.invoices.Update(c.Request.Context(), c.Param("id"), &inv); err != nil {
		h.fail(c, "failed to update invoice", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    &inv,
	})
}

// DeleteInvoice handles DELETE /api/invoices/:id
func (h *Handlers) DeleteInvoice(c *gin.Context) {
	if err := h.invoices.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "failed to delete invoice", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ListEmployeeInvoices handles GET /api/employees/:employeeId/invoices
func (h *Handlers) ListEmployeeInvoices(c *gin.Context) {
	items, err := h.invoices.ListByEmployee(c.Request.Context(), c.Param("employeeId"))
	if err != nil {
		h.fail(c, "failed to list employee invoices", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    items,
	})
}
