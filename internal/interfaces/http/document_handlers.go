package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/invoice-studio/internal/application/service"
)

// DownloadPDF handles GET /api/invoices/:id/pdf
func (h *Handlers) DownloadPDF(c *gin.Context) {
	lang, err := language(c)
	if err != nil {
		h.fail(c, "invalid language", err)
		return
	}

	doc, err := h.documents.Render(c.Request.Context(), c.Param("id"), lang)
	if err != nil {
		h.fail(c, "failed to render invoice", err)
		return
	}

	if fallbacks := doc.Fallbacks(); fallbacks > 0 {
		c.Header("X-Render-Fallbacks", strconv.Itoa(fallbacks))
	}
	c.Header("Content-Disposition", doc.ContentDisposition())
	c.Data(http.StatusOK, doc.ContentType, doc.Bytes)
}

// PreviewInvoice handles GET /api/invoices/:id/preview
func (h *Handlers) PreviewInvoice(c *gin.Context) {
	lang, err := language(c)
	if err != nil {
		h.fail(c, "invalid language", err)
		return
	}

	png, err := h.documents.Preview(c.Request.Context(), c.Param("id"), lang)
	if err != nil {
		h.fail(c, "failed to preview invoice", err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// EmailInvoice handles POST /api/invoices/:id/email
func (h *Handlers) EmailInvoice(c *gin.Context) {
	var req service.EmailRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, "invalid email request", err)
			return
		}
	}
	if req.Language == "" {
		req.Language = c.Query("lang")
	}

	job, err := h.emails.Queue(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, "failed to queue invoice email", err)
		return
	}

	c.JSON(http.StatusAccepted, Response{
		Success: true,
		Data:    job,
	})
}

// EmailHistory handles GET /api/invoices/:id/emails
func (h *Handlers) EmailHistory(c *gin.Context) {
	jobs, err := h.emails.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "failed to list invoice emails", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    jobs,
	})
}
