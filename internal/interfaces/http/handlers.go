package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/invoice-studio/internal/application/service"
	"github.com/garyjia/invoice-studio/internal/email"
	"github.com/garyjia/invoice-studio/internal/i18n"
	"github.com/garyjia/invoice-studio/internal/spreadsheet"
)

// Version is reported by /health
const Version = "1.0.0"

// Handlers contains all HTTP request handlers
type Handlers struct {
	invoices       service.InvoiceService
	profiles       service.ProfileService
	documents      service.DocumentService
	emails         service.EmailService
	importer       *spreadsheet.Importer
	health         func(c *gin.Context) error
	maxUploadBytes int64
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(services Services, maxUploadBytes int64, logger Logger) *Handlers {
	h := &Handlers{
		invoices:       services.Invoices,
		profiles:       services.Profiles,
		documents:      services.Documents,
		emails:         services.Emails,
		importer:       services.Importer,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
	if services.Health != nil {
		h.health = func(c *gin.Context) error { return services.Health(c.Request.Context()) }
	}
	return h
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
	}

	if h.health != nil {
		if err := h.health(c); err != nil {
			h.logger.Error("Health check failed", "error", err)
			response.Status = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, Response{
				Success: false,
				Data:    response,
				Error:   err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvoiceNotFound),
		errors.Is(err, service.ErrProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInvoice),
		errors.Is(err, service.ErrInvalidProfile),
		errors.Is(err, service.ErrInvalidLogo),
		errors.Is(err, service.ErrInvalidEmailRequest),
		errors.Is(err, i18n.ErrUnsupportedLanguage),
		errors.Is(err, spreadsheet.ErrNotWorkbook),
		errors.Is(err, spreadsheet.ErrMissingColumns),
		errors.Is(err, spreadsheet.ErrNoRows),
		errors.Is(err, spreadsheet.ErrInvalidCell):
		return http.StatusBadRequest
	case errors.Is(err, email.ErrAttachmentTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err and writes the mapped status. Internal errors hide their detail.
func (h *Handlers) fail(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	h.logger.Error(msg, "path", c.Request.URL.Path, "status", status, "error", err)

	text := err.Error()
	if status == http.StatusInternalServerError {
		text = msg
	}
	c.JSON(status, Response{
		Success: false,
		Error:   text,
	})
}

func (h *Handlers) badRequest(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Error:   msg,
	})
}

// language reads ?lang= strictly, then Accept-Language leniently
func language(c *gin.Context) (i18n.Language, error) {
	raw := c.Query("lang")
	if raw == "" {
		raw = c.GetHeader("Accept-Language")
		if raw == "" {
			return i18n.English, nil
		}
		lang, err := i18n.ParseLanguage(raw)
		if err != nil {
			return i18n.English, nil
		}
		return lang, nil
	}
	return i18n.ParseLanguage(raw)
}

// readUpload returns the bytes of the multipart field, bounded by maxUploadBytes
func (h *Handlers) readUpload(c *gin.Context, field string) ([]byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing %q upload: %w", field, err)
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		return nil, fmt.Errorf("upload of %d bytes exceeds %d", header.Size, h.maxUploadBytes)
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	return io.ReadAll(f)
}
