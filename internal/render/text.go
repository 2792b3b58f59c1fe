package render

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// Path is the strategy used to draw a fragment
type Path string

// Drawing paths
const (
	PathVector Path = "vector"
	PathRaster Path = "raster"
)

// Outcome reports how a fragment ended up on the page
type Outcome string

// Fragment outcomes
const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFallback Outcome = "fallback"
	OutcomeEmpty    Outcome = "empty"
)

// Fragment is the record of one Draw call
type Fragment struct {
	Text    string  `json:"text"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Page    int     `json:"page"`
	Path    Path    `json:"path"`
	Outcome Outcome `json:"outcome"`
	Lines   int     `json:"lines"`
	Reason  string  `json:"reason,omitempty"`
}

// Fallback reports whether a raster fragment was drawn with the vector font instead
func (f Fragment) Fallback() bool {
	return f.Outcome == OutcomeFallback
}

const vectorLinePitch = 1.15

// TextRenderer chooses between vector glyphs and a raster bitmap per fragment.
// It holds no per-document state.
type TextRenderer struct {
	raster Rasterizer
	logger *zap.Logger
}

// NewTextRenderer creates a renderer. raster may be nil, in which case every
// fragment that needs rasterizing falls back to the vector font.
func NewTextRenderer(raster Rasterizer, logger *zap.Logger) *TextRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextRenderer{raster: raster, logger: logger}
}

// Draw places text with x,y as the baseline anchor and returns what happened.
// It never fails: raster problems degrade to vector text.
func (r *TextRenderer) Draw(c Canvas, text string, x, y float64, style TextStyle) Fragment {
	frag := Fragment{Text: text, X: x, Y: y, Page: c.PageNo()}

	if strings.TrimSpace(text) == "" {
		frag.Path = PathVector
		frag.Outcome = OutcomeEmpty
		return frag
	}

	if NeedsRaster(text, style.Language()) {
		frag.Path = PathRaster
		err := r.drawRaster(c, text, x, y, style)
		if err == nil {
			frag.Outcome = OutcomeSuccess
			frag.Lines = 1
			return frag
		}

		r.logger.Warn("Text rasterization failed, using vector font",
			zap.String("text", text),
			zap.Error(err))
		frag.Outcome = OutcomeFallback
		frag.Reason = err.Error()
		frag.Lines = r.drawVector(c, text, x, y, style)
		return frag
	}

	frag.Path = PathVector
	frag.Outcome = OutcomeSuccess
	frag.Lines = r.drawVector(c, text, x, y, style)
	return frag
}

// Wrap splits text into lines no wider than the style's max width, measured
// with the face that Draw would use. Explicit newlines always break.
func (r *TextRenderer) Wrap(c Canvas, text string, style TextStyle) []string {
	if NeedsRaster(text, style.Language()) && r.raster != nil {
		return wrapText(text, style.MaxWidth(), func(s string) float64 {
			return r.raster.Measure(s, style)
		})
	}
	c.SetFont(style)
	return wrapText(text, style.MaxWidth(), c.StringWidth)
}

// LineHeight returns the vector line pitch of style in millimetres
func LineHeight(style TextStyle) float64 {
	return style.Size() * vectorLinePitch * mmPerInch / ptPerInch
}

func (r *TextRenderer) drawRaster(c Canvas, text string, x, y float64, style TextStyle) error {
	if r.raster == nil {
		return ErrNoRasterizer
	}

	bmp, err := r.raster.Rasterize(text, style)
	if err != nil {
		return err
	}
	if bmp == nil || bmp.Aspect() <= 0 || len(bmp.PNG) == 0 {
		return ErrBlankBitmap
	}

	w := style.MaxWidth()
	h := w / bmp.Aspect()

	left := x
	switch style.Align() {
	case AlignRight:
		left = x - w
	case AlignCenter:
		left = x - w/2
	}
	top := y - h

	return c.Image(bitmapName(bmp.PNG), bmp.PNG, "png", left, top, w, h)
}

func (r *TextRenderer) drawVector(c Canvas, text string, x, y float64, style TextStyle) int {
	c.SetFont(style)
	lines := wrapText(text, style.MaxWidth(), c.StringWidth)
	pitch := LineHeight(style)

	for i, line := range lines {
		lx := x
		switch style.Align() {
		case AlignRight:
			lx = x - c.StringWidth(line)
		case AlignCenter:
			lx = x - c.StringWidth(line)/2
		}
		c.Text(lx, y+float64(i)*pitch, line)
	}
	return len(lines)
}

// bitmapName derives a stable image key so identical bitmaps are embedded once
func bitmapName(data []byte) string {
	sum := sha1.Sum(data)
	return "txt-" + hex.EncodeToString(sum[:])
}

// wrapText greedily fills lines up to maxWidth. Breaks happen at spaces and
// before or after CJK runes; a single word wider than maxWidth is split by rune.
func wrapText(text string, maxWidth float64, measure func(string) float64) []string {
	var lines []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		lines = append(lines, wrapParagraph(strings.TrimRight(para, " \t"), maxWidth, measure)...)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

func wrapParagraph(para string, maxWidth float64, measure func(string) float64) []string {
	if para == "" || measure(para) <= maxWidth {
		return []string{para}
	}

	var lines []string
	line := ""
	for _, tok := range breakTokens(para) {
		candidate := line + tok
		if line == "" {
			candidate = strings.TrimLeft(tok, " ")
		}
		if measure(candidate) <= maxWidth {
			line = candidate
			continue
		}

		if line != "" {
			lines = append(lines, strings.TrimRight(line, " "))
		}
		line = strings.TrimLeft(tok, " ")

		for line != "" && measure(line) > maxWidth {
			head, tail := splitRunes(line, maxWidth, measure)
			lines = append(lines, head)
			line = tail
		}
	}
	if strings.TrimSpace(line) != "" {
		lines = append(lines, strings.TrimRight(line, " "))
	}
	return lines
}

// breakTokens splits s into pieces that may start a new line. Spaces stay
// attached to the front of the following word.
func breakTokens(s string) []string {
	var tokens []string
	var cur strings.Builder
	prevCJK := false
	for _, r := range s {
		// any ideograph is a break opportunity, even ones outside the rasterized block
		cjk := unicode.Is(japaneseScript, r) || unicode.Is(unicode.Han, r)
		if cur.Len() > 0 && (r == ' ' || cjk || prevCJK) && !onlySpaces(cur.String()) {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
		cur.WriteRune(r)
		prevCJK = cjk
	}
	if cur.Len() > 0 {
		tokens = append(tokens, cur.String())
	}
	return tokens
}

func onlySpaces(s string) bool {
	return strings.Trim(s, " ") == ""
}

// splitRunes returns the longest prefix of s that fits maxWidth (at least one rune)
func splitRunes(s string, maxWidth float64, measure func(string) float64) (string, string) {
	runes := []rune(s)
	n := 1
	for n < len(runes) && measure(string(runes[:n+1])) <= maxWidth {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}
