package render

import (
	"unicode"

	"github.com/garyjia/invoice-studio/internal/i18n"
)

// japaneseScript covers Hiragana, Katakana and the CJK Unified Ideographs
// block up to U+9FAF, which the built-in PDF font cannot draw.
var japaneseScript = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3040, Hi: 0x309F, Stride: 1},
		{Lo: 0x30A0, Hi: 0x30FF, Stride: 1},
		{Lo: 0x4E00, Hi: 0x9FAF, Stride: 1},
	},
}

// ContainsJapanese reports whether s has any Hiragana, Katakana or Kanji code point
func ContainsJapanese(s string) bool {
	for _, r := range s {
		if unicode.Is(japaneseScript, r) {
			return true
		}
	}
	return false
}

// NeedsRaster reports whether a fragment must be drawn as a bitmap.
// Japanese-language fragments are rasterized even when they are pure ASCII.
func NeedsRaster(s string, lang i18n.Language) bool {
	return lang.IsJapanese() || ContainsJapanese(s)
}
