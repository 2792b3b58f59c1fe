package render

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/internal/domain/tax"
	"github.com/garyjia/invoice-studio/internal/i18n"
)

func testInvoice() *entity.Invoice {
	return &entity.Invoice{
		ID:              "inv-1",
		InvoiceNumber:   "INV-2024-001",
		Date:            "2024-03-05",
		DueDate:         "2024-04-04",
		EmployeeName:    "Asha Rao",
		EmployeeID:      "EMP-7",
		EmployeeEmail:   "asha@example.com",
		EmployeeMobile:  "+91 90000 00000",
		EmployeeAddress: "12 Main St, Springfield, 00000",
		Services: []entity.ServiceItem{
			{ID: "s1", Description: "Consulting", Hours: 10, Rate: 100},
			{ID: "s2", Description: "Support", Hours: 5, Rate: 80},
		},
		TaxRate: 10,
		Country: entity.CountryIndia,
	}
}

func testProfile() entity.CompanyProfile {
	return entity.CompanyProfile{
		CompanyName:    "Ory Folks Pvt Ltd",
		CompanyAddress: "Vedayapalem, Nellore, Andhra Pradesh",
		TaxID:          "29ABCDE1234F1Z5",
		Phone:          "+91 98765 43210",
		Email:          "info@oryfolks.com",
	}
}

func testBank() entity.BankDetails {
	return entity.BankDetails{
		BankName:          "Test Bank",
		AccountNumber:     "123456789012",
		AccountHolderName: "Ory Folks Pvt Ltd",
		IFSCCode:          "HDFC0001234",
		BranchName:        "Nellore",
		BranchCode:        "01234",
		AccountType:       "Savings",
	}
}

func runLayout(inv *entity.Invoice, lang i18n.Language, raster Rasterizer) (*recordingCanvas, *layout) {
	c := newRecordingCanvas()
	l := &layout{
		canvas:  c,
		text:    NewTextRenderer(raster, zap.NewNop()),
		logger:  zap.NewNop(),
		cat:     i18n.CatalogFor(lang),
		lang:    lang,
		inv:     inv,
		profile: testProfile(),
		bank:    testBank(),
		tax:     tax.ForInvoice(inv),
		contact: Contact{Phone: "03-1234-5678", Email: "info@oryfolks.co.jp"},
	}
	l.run()
	return c, l
}

func textsContaining(c *recordingCanvas, sub string) []canvasOp {
	var out []canvasOp
	for _, op := range c.texts() {
		if strings.Contains(op.Text, sub) {
			out = append(out, op)
		}
	}
	return out
}

func recordedWidth(s string, size float64) float64 {
	return float64(utf8.RuneCountInString(s)) * size * 0.18
}

func TestLayout_IndiaTaxLines(t *testing.T) {
	c, _ := runLayout(testInvoice(), i18n.English, nil)

	cgst, ok := c.findText("CGST (5.00%):")
	require.True(t, ok)
	_, ok = c.findText("SGST (5.00%):")
	require.True(t, ok)
	assert.Len(t, textsContaining(c, "INR 90.00"), 2)

	sub, ok := c.findText("INR 1,800.00")
	require.True(t, ok)
	grand, ok := c.findText("INR 1,980.00")
	require.True(t, ok)

	assert.InDelta(t, 196-recordedWidth("INR 1,800.00", 10), sub.X, 1e-9)
	assert.Less(t, sub.Y, cgst.Y)
	assert.Less(t, cgst.Y, grand.Y)
	assert.Equal(t, 12.0, grand.Style.Size())
	assert.True(t, grand.Style.IsBold())
}

func TestLayout_ZeroRateSuppression(t *testing.T) {
	t.Run("india", func(t *testing.T) {
		inv := testInvoice()
		inv.TaxRate = 0
		c, _ := runLayout(inv, i18n.English, nil)

		assert.Empty(t, textsContaining(c, "CGST"))
		assert.Empty(t, textsContaining(c, "SGST"))
		_, ok := c.findText("INR 1,800.00")
		assert.True(t, ok)
	})

	t.Run("japan", func(t *testing.T) {
		inv := testInvoice()
		inv.TaxRate = 0
		inv.Country = entity.CountryJapan
		c, _ := runLayout(inv, i18n.English, nil)

		assert.Empty(t, textsContaining(c, "Consumption Tax"))
		assert.Len(t, textsContaining(c, "JPY 1,800.00"), 2)
	})
}

func TestLayout_JapanConsumptionTax(t *testing.T) {
	inv := testInvoice()
	inv.Country = entity.CountryJapan
	c, _ := runLayout(inv, i18n.English, nil)

	_, ok := c.findText("Consumption Tax (10.00%):")
	assert.True(t, ok)
	_, ok = c.findText("JPY 180.00")
	assert.True(t, ok)
	_, ok = c.findText("JPY 1,980.00")
	assert.True(t, ok)
	assert.Empty(t, textsContaining(c, "CGST"))
}

func TestLayout_BillToAddressLines(t *testing.T) {
	c, _ := runLayout(testInvoice(), i18n.English, nil)

	label, ok := c.findText("Address:")
	require.True(t, ok)

	prevY := label.Y
	for _, line := range []string{"12 Main St", "Springfield", "00000"} {
		op, ok := c.findText(line)
		require.True(t, ok, line)
		assert.InDelta(t, 196-recordedWidth(line, 10), op.X, 1e-9, "%s is right-aligned", line)
		assert.InDelta(t, prevY+6, op.Y, 1e-9)
		prevY = op.Y
	}
}

func TestLayout_BillToOmitted(t *testing.T) {
	for _, name := range []string{"", "  ", "N/A"} {
		inv := testInvoice()
		inv.EmployeeName = name
		c, _ := runLayout(inv, i18n.English, nil)

		_, ok := c.findText("Bill To:")
		assert.False(t, ok, "name %q", name)
		assert.Empty(t, textsContaining(c, "asha@example.com"))
	}
}

func TestLayout_BillToOptionalFields(t *testing.T) {
	inv := testInvoice()
	inv.EmployeeID = ""
	inv.EmployeeMobile = " "
	inv.EmployeeAddress = ""
	c, _ := runLayout(inv, i18n.English, nil)

	name, ok := c.findText("Asha Rao")
	require.True(t, ok)
	email, ok := c.findText("Email: asha@example.com")
	require.True(t, ok)
	assert.InDelta(t, name.Y+6, email.Y, 1e-9)
	assert.Empty(t, textsContaining(c, "Employee ID"))
	assert.Empty(t, textsContaining(c, "Address"))
}

func TestLayout_TableStartsBelowLongerPartyBlock(t *testing.T) {
	tests := []struct {
		name    string
		address string
	}{
		{"bill-to longer", "Flat 1, Tower 2, Sector 3, Phase 4, Gurgaon, Haryana, 122001, India"},
		{"from longer", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := testInvoice()
			inv.EmployeeAddress = tt.address
			c, _ := runLayout(inv, i18n.English, nil)

			band := c.filter("rect")[0]
			var lowest float64
			for _, op := range c.texts() {
				if op.Y < band.Y && op.Y > lowest {
					lowest = op.Y
				}
			}
			assert.InDelta(t, lowest+6+10-5, band.Y, 1e-9, "gap below the longer block")
		})
	}
}

func TestLayout_WrappedPartyLinesPushFollowingLines(t *testing.T) {
	t.Run("from address", func(t *testing.T) {
		inv := testInvoice()
		c := newRecordingCanvas()
		l := &layout{
			canvas:  c,
			text:    NewTextRenderer(nil, zap.NewNop()),
			logger:  zap.NewNop(),
			cat:     i18n.CatalogFor(i18n.English),
			lang:    i18n.English,
			inv:     inv,
			profile: testProfile(),
			bank:    testBank(),
			tax:     tax.ForInvoice(inv),
		}
		l.profile.CompanyAddress = strings.Repeat("Industrial Estate Phase Two Building ", 10) + ", Pune"
		l.run()

		wrapped := textsContaining(c, "Industrial")
		require.Greater(t, len(wrapped), 1)
		last := wrapped[len(wrapped)-1]

		pune, ok := c.findText("Pune")
		require.True(t, ok)
		assert.InDelta(t, last.Y+linePitch, pune.Y, 1e-9)

		band := c.filter("rect")[0]
		var lowest float64
		for _, op := range c.texts() {
			if op.Y < band.Y && op.Y > lowest {
				lowest = op.Y
			}
		}
		assert.InDelta(t, lowest+linePitch+10-5, band.Y, 1e-9)
	})

	t.Run("bill-to name", func(t *testing.T) {
		inv := testInvoice()
		inv.EmployeeName = strings.TrimSpace(strings.Repeat("Recipient ", 12))
		c, _ := runLayout(inv, i18n.English, nil)

		wrapped := textsContaining(c, "Recipient")
		require.Greater(t, len(wrapped), 1)
		last := wrapped[len(wrapped)-1]

		id, ok := c.findText("Employee ID: EMP-7")
		require.True(t, ok)
		assert.InDelta(t, last.Y+linePitch, id.Y, 1e-9)
	})
}

func TestAdvance(t *testing.T) {
	assert.Equal(t, linePitch, advance(Fragment{Lines: 0}, bodyStyle))
	assert.Equal(t, linePitch, advance(Fragment{Lines: 1}, bodyStyle))
	assert.InDelta(t, linePitch+2*LineHeight(bodyStyle), advance(Fragment{Lines: 3}, bodyStyle), 1e-9)
}

func TestLayout_EmptyServices(t *testing.T) {
	inv := testInvoice()
	inv.Services = nil
	c, l := runLayout(inv, i18n.English, nil)

	_, ok := c.findText("S.No")
	assert.True(t, ok)
	_, ok = c.findText("1")
	assert.False(t, ok, "no body rows")
	// subtotal, CGST, SGST and grand total
	assert.Len(t, textsContaining(c, "INR 0.00"), 4)
	assert.Equal(t, 1, c.PageNo())
	assert.NotEmpty(t, l.fragments)
}

func TestLayout_PaginationKeepsRowsWhole(t *testing.T) {
	inv := testInvoice()
	inv.Services = nil
	for i := 1; i <= 40; i++ {
		inv.Services = append(inv.Services, entity.ServiceItem{
			ID:          strconv.Itoa(i),
			Description: fmt.Sprintf("row-%d-a\nrow-%d-b\nrow-%d-c", i, i, i),
			Hours:       1,
			Rate:        10,
		})
	}
	c, _ := runLayout(inv, i18n.English, nil)

	require.GreaterOrEqual(t, c.PageNo(), 3)

	for i := 1; i <= 40; i++ {
		serial, ok := c.findText(strconv.Itoa(i))
		require.True(t, ok)
		lines := textsContaining(c, fmt.Sprintf("row-%d-", i))
		require.Len(t, lines, 3)
		for _, op := range lines {
			assert.Equal(t, serial.Page, op.Page, "row %d split across pages", i)
			assert.LessOrEqual(t, op.Y, printableBottom)
		}
	}

	// rows after a break restart at the top margin
	first, _ := c.findText("row-1-a")
	for _, op := range textsContaining(c, "-a") {
		if op.Page > first.Page {
			assert.GreaterOrEqual(t, op.Y, pageTop)
		}
	}
}

func TestLayout_TallRowMovesToNextPage(t *testing.T) {
	inv := testInvoice()
	lines := make([]string, 12)
	for i := range lines {
		lines[i] = fmt.Sprintf("tall-%d", i)
	}
	inv.Services = []entity.ServiceItem{
		{Description: strings.Repeat("x\n", 20) + "x", Hours: 1, Rate: 1},
		{Description: strings.Join(lines, "\n"), Hours: 1, Rate: 1},
	}
	c, _ := runLayout(inv, i18n.English, nil)

	ops := textsContaining(c, "tall-")
	require.Len(t, ops, 12)
	for _, op := range ops {
		assert.Equal(t, ops[0].Page, op.Page)
		assert.LessOrEqual(t, op.Y, printableBottom)
	}
}

func TestLayout_EnglishPaymentAndClosing(t *testing.T) {
	c, _ := runLayout(testInvoice(), i18n.English, nil)

	for _, s := range []string{
		"Payment Details",
		"Account Name: Ory Folks Pvt Ltd",
		"Account Number: 123456789012",
		"IFSC Code: HDFC0001234",
		"Branch Code: 01234",
		"Authorised Signature",
	} {
		_, ok := c.findText(s)
		assert.True(t, ok, s)
	}

	thanks, ok := c.findText("Thank you for your business!")
	require.True(t, ok)
	assert.InDelta(t, 105-recordedWidth("Thank you for your business!", 9)/2, thanks.X, 1e-9)
	assert.Empty(t, textsContaining(c, "TEL:"))
}

func TestLayout_JapaneseDocument(t *testing.T) {
	raster := newStubRasterizer(t)
	c, l := runLayout(testInvoice(), i18n.Japanese, raster)

	assert.Contains(t, raster.calls, "請求元:")
	assert.Contains(t, raster.calls, "銀行名: Test Bank")
	assert.Contains(t, raster.calls, "口座名義: Ory Folks Pvt Ltd")
	assert.Contains(t, raster.calls, "TEL: 03-1234-5678 (平日 9:00〜18:00)")
	assert.NotContains(t, raster.calls, "Payment Details")

	// numbers stay vector even in a Japanese document
	_, ok := c.findText("INR 1,980.00")
	assert.True(t, ok)
	_, ok = c.findText("Email: info@oryfolks.co.jp")
	assert.True(t, ok)
	_, ok = c.findText("Consulting")
	assert.True(t, ok)

	for _, f := range l.fragments {
		assert.NotEqual(t, OutcomeFallback, f.Outcome, f.Text)
	}
}

func TestLayout_JapaneseWithoutRasterizerFallsBack(t *testing.T) {
	c, l := runLayout(testInvoice(), i18n.Japanese, nil)

	var fallbacks int
	for _, f := range l.fragments {
		if f.Fallback() {
			fallbacks++
		}
	}
	assert.Greater(t, fallbacks, 0)
	assert.Empty(t, c.images())
	_, ok := c.findText("請求元:")
	assert.True(t, ok)
}

func TestLayout_EnsureSpace(t *testing.T) {
	c := newRecordingCanvas()
	l := &layout{canvas: c}
	c.AddPage()

	l.y = 200
	l.ensureSpace(50)
	assert.Equal(t, 1, c.PageNo())

	l.y = 280
	l.ensureSpace(10)
	assert.Equal(t, 2, c.PageNo())
	assert.Equal(t, pageTop, l.y)

	l.ensureSpace(400)
	assert.Equal(t, 2, c.PageNo(), "a block taller than a page is placed at the top")
}

func TestLayout_LogoPlacement(t *testing.T) {
	c := newRecordingCanvas()
	l := &layout{
		canvas:  c,
		text:    NewTextRenderer(nil, zap.NewNop()),
		logger:  zap.NewNop(),
		cat:     i18n.CatalogFor(i18n.English),
		lang:    i18n.English,
		inv:     testInvoice(),
		profile: testProfile(),
		tax:     tax.ForInvoice(testInvoice()),
		logo:    &Logo{Name: "logo", Data: []byte{1}, Format: "jpg", Width: 400, Height: 100},
	}
	l.run()

	imgs := c.images()
	require.Len(t, imgs, 1)
	assert.Equal(t, marginLeft, imgs[0].X)
	assert.Equal(t, headerTop, imgs[0].Y)
	assert.Equal(t, logoWidth, imgs[0].W)
	assert.InDelta(t, 12.5, imgs[0].H, 1e-9)
}
