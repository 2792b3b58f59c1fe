package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/draw"
)

// Canvas is the page-description surface the layout draws on.
// Coordinates are millimetres from the top-left corner of the page;
// Text takes a baseline origin and Image a top-left origin.
type Canvas interface {
	AddPage()
	PageNo() int
	SetFont(style TextStyle)
	SetDrawGray(level int)
	SetFillGray(level int)
	SetLineWidth(width float64)
	Line(x1, y1, x2, y2 float64)
	FillRect(x, y, w, h float64)
	Text(x, y float64, s string)
	StringWidth(s string) float64
	Image(name string, data []byte, format string, x, y, w, h float64) error
	Err() error
}

const coreFontFamily = "Helvetica"

// pdfCanvas adapts gofpdf to Canvas using the built-in Helvetica font.
// Text is translated to cp1252; runes outside it print as '.'.
//
// gofpdf writes image objects ordered by pixel width only, so every image
// registered on one canvas is given a distinct pixel width to keep the
// output byte-stable.
type pdfCanvas struct {
	pdf       *gofpdf.Fpdf
	translate func(string) string
	images    map[string]float64
	widths    map[int]bool
}

func newPDFCanvas(pdf *gofpdf.Fpdf) *pdfCanvas {
	return &pdfCanvas{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
		images:    make(map[string]float64),
		widths:    make(map[int]bool),
	}
}

func (c *pdfCanvas) AddPage() { c.pdf.AddPage() }

func (c *pdfCanvas) PageNo() int { return c.pdf.PageNo() }

func (c *pdfCanvas) SetFont(style TextStyle) {
	fontStyle := ""
	if style.IsBold() {
		fontStyle = "B"
	}
	c.pdf.SetFont(coreFontFamily, fontStyle, style.Size())
}

func (c *pdfCanvas) SetDrawGray(level int) { c.pdf.SetDrawColor(level, level, level) }

func (c *pdfCanvas) SetFillGray(level int) { c.pdf.SetFillColor(level, level, level) }

func (c *pdfCanvas) SetLineWidth(width float64) { c.pdf.SetLineWidth(width) }

func (c *pdfCanvas) Line(x1, y1, x2, y2 float64) { c.pdf.Line(x1, y1, x2, y2) }

func (c *pdfCanvas) FillRect(x, y, w, h float64) { c.pdf.Rect(x, y, w, h, "F") }

func (c *pdfCanvas) Text(x, y float64, s string) { c.pdf.Text(x, y, c.translate(s)) }

func (c *pdfCanvas) StringWidth(s string) float64 {
	return c.pdf.GetStringWidth(c.translate(s))
}

// Image registers data under name (once per document) and places it.
// A decode failure is returned and cleared so the document stays usable.
func (c *pdfCanvas) Image(name string, data []byte, format string, x, y, w, h float64) error {
	if err := c.pdf.Error(); err != nil {
		return err
	}

	scale, ok := c.images[name]
	if !ok {
		padded, paddedFormat, s, err := c.uniqueWidth(data, format)
		if err != nil {
			return fmt.Errorf("failed to register image %s: %w", name, err)
		}
		opts := gofpdf.ImageOptions{ImageType: paddedFormat, AllowNegativePosition: true}
		c.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(padded))
		if err := c.pdf.Error(); err != nil {
			c.pdf.ClearError()
			return fmt.Errorf("failed to register image %s: %w", name, err)
		}
		c.images[name] = s
		scale = s
	}

	opts := gofpdf.ImageOptions{AllowNegativePosition: true}
	c.pdf.ImageOptions(name, x, y, w*scale, h, false, opts, 0, "")
	if err := c.pdf.Error(); err != nil {
		c.pdf.ClearError()
		return fmt.Errorf("failed to place image %s: %w", name, err)
	}
	return nil
}

// uniqueWidth returns data unchanged when its pixel width is still free on
// this canvas. Otherwise the image is widened with transparent columns on the
// right up to the next free width and re-encoded as PNG; scale is the factor
// the placed width must grow by so the original pixels keep their size.
func (c *pdfCanvas) uniqueWidth(data []byte, format string) ([]byte, string, float64, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", 0, err
	}
	if cfg.Width <= 0 {
		return nil, "", 0, fmt.Errorf("image has no width")
	}
	if !c.widths[cfg.Width] {
		c.widths[cfg.Width] = true
		return data, format, 1, nil
	}

	target := cfg.Width + 1
	for c.widths[target] {
		target++
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", 0, err
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, target, b.Dy()))
	draw.Draw(dst, image.Rect(0, 0, b.Dx(), b.Dy()), src, b.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, "", 0, err
	}
	c.widths[target] = true
	return buf.Bytes(), "png", float64(target) / float64(cfg.Width), nil
}

func (c *pdfCanvas) Err() error { return c.pdf.Error() }

var _ Canvas = (*pdfCanvas)(nil)
