package preview

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func twoPagePDF(t *testing.T) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPage()
	pdf.Text(20, 20, "Invoice #INV-001")
	pdf.AddPage()
	pdf.Text(20, 20, "Page two")

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func TestThumbnailer_FirstPage(t *testing.T) {
	th := NewThumbnailer(72, zap.NewNop())

	data, err := th.FirstPage(twoPagePDF(t))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	// A4 at 72 dpi is 595 x 842 points
	assert.InDelta(t, 595, img.Bounds().Dx(), 2)
	assert.InDelta(t, 842, img.Bounds().Dy(), 2)
}

func TestThumbnailer_InvalidPDF(t *testing.T) {
	th := NewThumbnailer(0, zap.NewNop())

	_, err := th.FirstPage([]byte("not a pdf"))
	assert.Error(t, err)
}
