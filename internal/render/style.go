package render

import (
	"fmt"

	"github.com/garyjia/invoice-studio/internal/i18n"
)

// Align is the horizontal anchor of a text fragment relative to its x coordinate
type Align int

// Alignments
const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// String returns the alignment name
func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// Weight is the font weight of a text fragment
type Weight int

// Weights
const (
	WeightNormal Weight = iota
	WeightBold
)

const (
	defaultFontSize = 10.0
	defaultMaxWidth = 100.0
	maxFontSize     = 72.0
	pageWidth       = 210.0
)

// TextStyle describes how one fragment is placed. It is immutable once built;
// use NewTextStyle or the With helpers to derive variants.
type TextStyle struct {
	size     float64
	weight   Weight
	align    Align
	maxWidth float64
	lang     i18n.Language
}

// StyleOption customizes a TextStyle during construction
type StyleOption func(*TextStyle)

// Size sets the font size in points
func Size(pt float64) StyleOption {
	return func(s *TextStyle) { s.size = pt }
}

// Bold selects the bold weight
func Bold() StyleOption {
	return func(s *TextStyle) { s.weight = WeightBold }
}

// Aligned sets the horizontal alignment
func Aligned(a Align) StyleOption {
	return func(s *TextStyle) { s.align = a }
}

// MaxWidth sets the wrapping and raster box width in millimetres
func MaxWidth(mm float64) StyleOption {
	return func(s *TextStyle) { s.maxWidth = mm }
}

// Lang sets the content language of the fragment
func Lang(l i18n.Language) StyleOption {
	return func(s *TextStyle) { s.lang = l }
}

// DefaultTextStyle returns 10pt normal left-aligned English text, 100mm wide
func DefaultTextStyle() TextStyle {
	return TextStyle{
		size:     defaultFontSize,
		weight:   WeightNormal,
		align:    AlignLeft,
		maxWidth: defaultMaxWidth,
		lang:     i18n.English,
	}
}

// NewTextStyle applies opts over the defaults and validates the result
func NewTextStyle(opts ...StyleOption) (TextStyle, error) {
	s := DefaultTextStyle()
	for _, opt := range opts {
		opt(&s)
	}
	if err := s.validate(); err != nil {
		return TextStyle{}, err
	}
	return s, nil
}

// MustTextStyle is NewTextStyle for package-level style tables. It panics on invalid options.
func MustTextStyle(opts ...StyleOption) TextStyle {
	s, err := NewTextStyle(opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s TextStyle) validate() error {
	if s.size <= 0 || s.size > maxFontSize {
		return fmt.Errorf("%w: font size %.2f outside (0, %.0f]", ErrInvalidStyle, s.size, maxFontSize)
	}
	if s.maxWidth <= 0 || s.maxWidth > pageWidth {
		return fmt.Errorf("%w: max width %.2f outside (0, %.0f]", ErrInvalidStyle, s.maxWidth, pageWidth)
	}
	switch s.align {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		return fmt.Errorf("%w: unknown alignment %d", ErrInvalidStyle, s.align)
	}
	switch s.lang {
	case i18n.English, i18n.Japanese:
	default:
		return fmt.Errorf("%w: unknown language %q", ErrInvalidStyle, s.lang)
	}
	return nil
}

// Size returns the font size in points
func (s TextStyle) Size() float64 { return s.size }

// Weight returns the font weight
func (s TextStyle) Weight() Weight { return s.weight }

// IsBold reports whether the style is bold
func (s TextStyle) IsBold() bool { return s.weight == WeightBold }

// Align returns the alignment
func (s TextStyle) Align() Align { return s.align }

// MaxWidth returns the box width in millimetres
func (s TextStyle) MaxWidth() float64 { return s.maxWidth }

// Language returns the content language
func (s TextStyle) Language() i18n.Language { return s.lang }

// WithLanguage returns a copy of s in lang
func (s TextStyle) WithLanguage(lang i18n.Language) TextStyle {
	s.lang = lang
	return s
}

// WithAlign returns a copy of s with alignment a
func (s TextStyle) WithAlign(a Align) TextStyle {
	s.align = a
	return s
}
