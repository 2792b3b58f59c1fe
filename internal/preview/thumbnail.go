// Package preview turns rendered documents into page images
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"sync"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-studio/internal/application/port"
)

// DefaultDPI gives an A4 page roughly 800px wide
const DefaultDPI = 96

// ErrEmptyDocument is returned for PDFs without pages
var ErrEmptyDocument = errors.New("document has no pages")

// Thumbnailer renders PDF pages with MuPDF
type Thumbnailer struct {
	dpi    float64
	logger *zap.Logger
	// mu serialises MuPDF calls
	mu sync.Mutex
}

// NewThumbnailer creates a thumbnailer; dpi <= 0 uses DefaultDPI
func NewThumbnailer(dpi float64, logger *zap.Logger) *Thumbnailer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Thumbnailer{
		dpi:    dpi,
		logger: logger,
	}
}

// FirstPage returns page one of pdf as PNG
func (t *Thumbnailer) FirstPage(pdf []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, ErrEmptyDocument
	}

	img, err := doc.ImageDPI(0, t.dpi)
	if err != nil {
		t.logger.Error("Failed to rasterize page", zap.Int("page", 0), zap.Error(err))
		return nil, fmt.Errorf("failed to rasterize page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}

	t.logger.Debug("Rendered preview",
		zap.Int("pages", doc.NumPage()),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

var _ port.Previewer = (*Thumbnailer)(nil)
