package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/garyjia/invoice-studio/internal/i18n"
)

func TestContainsJapanese(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"ascii", "Invoice #42", false},
		{"latin-1", "Café €", false},
		{"hiragana", "ありがとう", true},
		{"katakana", "オライ", true},
		{"kanji", "請求書", true},
		{"mixed", "INV-1 請求", true},
		{"range start", "\u3040", true},
		{"katakana end", "\u30ff", true},
		{"ideograph end", "\u9faf", true},
		{"beyond ideograph block", "\u9fb0", false},
		{"fullwidth punctuation only", "（）", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsJapanese(tt.text))
		})
	}
}

func TestNeedsRaster(t *testing.T) {
	assert.False(t, NeedsRaster("Subtotal", i18n.English))
	assert.True(t, NeedsRaster("小計", i18n.English), "script detection overrides the declared language")
	assert.True(t, NeedsRaster("TEL: 03-1234-5678", i18n.Japanese), "japanese mode rasterizes ascii too")
}
