package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	// rasterScale renders bitmaps at twice the on-page resolution
	rasterScale = 2.0
	// cssDPI is the pixel density the box widths are computed at
	cssDPI     = 96.0
	mmPerInch  = 25.4
	ptPerInch  = 72.0
	lineFactor = 1.25
)

// pxPerMM is the bitmap pixel count for one millimetre of page
var pxPerMM = cssDPI / mmPerInch * rasterScale

// Bitmap is a PNG-encoded rendering of one text fragment
type Bitmap struct {
	PNG    []byte
	Width  int
	Height int
}

// Aspect returns width divided by height
func (b *Bitmap) Aspect() float64 {
	if b == nil || b.Height == 0 {
		return 0
	}
	return float64(b.Width) / float64(b.Height)
}

// Rasterizer draws text the built-in PDF font cannot represent
type Rasterizer interface {
	// Rasterize renders text on a single line inside a box MaxWidth wide
	Rasterize(text string, style TextStyle) (*Bitmap, error)
	// Measure returns the rendered width of text in millimetres
	Measure(text string, style TextStyle) float64
}

// GlyphRasterizer renders text with an OpenType/TrueType font that covers CJK.
// It keeps only parsed fonts; every call creates its own face, so it is
// safe for concurrent use.
type GlyphRasterizer struct {
	regular *opentype.Font
	bold    *opentype.Font
}

// NewGlyphRasterizer parses the regular face and an optional bold face.
// Without a bold face, bold text is drawn with a one-pixel double strike.
func NewGlyphRasterizer(regular, bold []byte) (*GlyphRasterizer, error) {
	reg, err := opentype.Parse(regular)
	if err != nil {
		return nil, fmt.Errorf("failed to parse regular font: %w", err)
	}

	r := &GlyphRasterizer{regular: reg}
	if len(bold) > 0 {
		b, err := opentype.Parse(bold)
		if err != nil {
			return nil, fmt.Errorf("failed to parse bold font: %w", err)
		}
		r.bold = b
	}
	return r, nil
}

// LoadGlyphRasterizer reads font files from disk. boldPath may be empty.
func LoadGlyphRasterizer(regularPath, boldPath string) (*GlyphRasterizer, error) {
	regular, err := os.ReadFile(regularPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font %s: %w", regularPath, err)
	}

	var bold []byte
	if boldPath != "" {
		bold, err = os.ReadFile(boldPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font %s: %w", boldPath, err)
		}
	}
	return NewGlyphRasterizer(regular, bold)
}

// Rasterize draws text in black on a white box. The box is MaxWidth wide and
// 1.25 line heights tall; text that overflows the box is clipped on the right.
func (r *GlyphRasterizer) Rasterize(text string, style TextStyle) (*Bitmap, error) {
	face, fauxBold, err := r.face(style)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	fontPx := fontPixels(style.Size())
	width := int(math.Round(style.MaxWidth() * pxPerMM))
	height := int(math.Ceil(fontPx * lineFactor))
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: empty raster box", ErrBlankBitmap)
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	advance := font.MeasureString(face, text)
	x := alignedOrigin(fixed.I(width), advance, style.Align())

	metrics := face.Metrics()
	baseline := (fixed.I(height) + metrics.Ascent - metrics.Descent) / 2

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.Point26_6{X: x, Y: baseline},
	}
	d.DrawString(text)
	if fauxBold {
		d.Dot = fixed.Point26_6{X: x + fixed.I(1), Y: baseline}
		d.DrawString(text)
	}

	if !hasInk(img) {
		return nil, ErrBlankBitmap
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode text bitmap: %w", err)
	}

	return &Bitmap{PNG: buf.Bytes(), Width: width, Height: height}, nil
}

// Measure returns the advance width of text in millimetres. It returns 0 when
// no face can be built.
func (r *GlyphRasterizer) Measure(text string, style TextStyle) float64 {
	face, fauxBold, err := r.face(style)
	if err != nil {
		return 0
	}
	defer face.Close()

	advance := font.MeasureString(face, text)
	px := float64(advance) / 64
	if fauxBold && px > 0 {
		px++
	}
	return px / pxPerMM
}

func (r *GlyphRasterizer) face(style TextStyle) (font.Face, bool, error) {
	f := r.regular
	fauxBold := style.IsBold()
	if style.IsBold() && r.bold != nil {
		f = r.bold
		fauxBold = false
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontPixels(style.Size()),
		DPI:     ptPerInch,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, fauxBold, nil
}

// fontPixels converts points to bitmap pixels at 96 dpi and 2x scale
func fontPixels(pt float64) float64 {
	return pt * cssDPI / ptPerInch * rasterScale
}

func alignedOrigin(box, advance fixed.Int26_6, align Align) fixed.Int26_6 {
	if advance >= box {
		return 0
	}
	switch align {
	case AlignCenter:
		return (box - advance) / 2
	case AlignRight:
		return box - advance
	default:
		return 0
	}
}

func hasInk(img *image.Gray) bool {
	for _, p := range img.Pix {
		if p < 0xF0 {
			return true
		}
	}
	return false
}

var _ Rasterizer = (*GlyphRasterizer)(nil)
