package render

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/internal/domain/tax"
	"github.com/garyjia/invoice-studio/internal/i18n"
)

// A4 portrait, millimetres
const (
	marginLeft  = 14.0
	marginRight = 196.0
	pageCenter  = 105.0
	contentW    = marginRight - marginLeft

	headerTop       = 18.0
	pageTop         = 20.0
	breakAfterY     = 250.0
	printableBottom = 285.0

	logoWidth = 50.0

	colSerial = 14.0
	colDesc   = 30.0
	colHours  = 100.0
	colPrice  = 150.0
	colAmount = 190.0

	descWrapWidth = 70.0
	rowPitch      = 6.0
	minRowHeight  = 8.0

	totalsLabelX = 135.0
	totalsStep   = 8.0

	signatureLeft   = 130.0
	signatureLabelX = 163.0
	signatureMaxY   = 270.0

	sealX    = 160.0
	jpIndent = 20.0

	linePitch = 6.0
)

var (
	metaStyle        = MustTextStyle(Size(11), Bold(), Aligned(AlignRight), MaxWidth(70))
	headingStyle     = MustTextStyle(Size(11), Bold(), MaxWidth(100))
	bodyStyle        = MustTextStyle(Size(10), MaxWidth(100))
	billHeadingStyle = MustTextStyle(Size(11), Bold(), Aligned(AlignRight), MaxWidth(80))
	billStyle        = MustTextStyle(Size(10), Aligned(AlignRight), MaxWidth(80))

	colSerialHead = MustTextStyle(Size(11), Bold(), MaxWidth(15))
	colDescHead   = MustTextStyle(Size(11), Bold(), MaxWidth(descWrapWidth))
	colHoursHead  = MustTextStyle(Size(11), Bold(), Aligned(AlignRight), MaxWidth(30))
	colPriceHead  = MustTextStyle(Size(11), Bold(), Aligned(AlignRight), MaxWidth(30))
	colAmountHead = MustTextStyle(Size(11), Bold(), Aligned(AlignRight), MaxWidth(20))

	serialStyle = MustTextStyle(Size(10), MaxWidth(15))
	descStyle   = MustTextStyle(Size(10), MaxWidth(descWrapWidth))
	numberStyle = MustTextStyle(Size(10), Aligned(AlignRight), MaxWidth(45))

	totalLabelStyle = MustTextStyle(Size(10), Bold(), Aligned(AlignRight), MaxWidth(50))
	totalValueStyle = MustTextStyle(Size(10), Aligned(AlignRight), MaxWidth(60))
	grandLabelStyle = MustTextStyle(Size(12), Bold(), Aligned(AlignRight), MaxWidth(50))
	grandValueStyle = MustTextStyle(Size(12), Bold(), Aligned(AlignRight), MaxWidth(60))

	captionStyle  = MustTextStyle(Size(9), Aligned(AlignRight), MaxWidth(60))
	thankYouStyle = MustTextStyle(Size(9), Aligned(AlignCenter), MaxWidth(contentW))
	sealStyle     = MustTextStyle(Size(9), Bold(), Aligned(AlignRight), MaxWidth(60))
)

var (
	billAddressSep = regexp.MustCompile(`[,\n]`)
	fromAddressSep = regexp.MustCompile(`[,、\n]`)
)

// Contact is the phone and email printed in the Japanese closing block
type Contact struct {
	Phone string
	Email string
}

// layout is the per-render cursor state. It is created, used once and dropped.
type layout struct {
	canvas  Canvas
	text    *TextRenderer
	logger  *zap.Logger
	cat     i18n.Catalog
	lang    i18n.Language
	inv     *entity.Invoice
	profile entity.CompanyProfile
	bank    entity.BankDetails
	tax     tax.Breakdown
	logo    *Logo
	contact Contact

	y         float64
	fragments []Fragment
}

// run places every block in reading order on the canvas
func (l *layout) run() {
	l.canvas.AddPage()
	l.y = headerTop

	l.header()
	l.parties()
	l.table()
	l.totals()
	if !l.lang.IsJapanese() {
		l.payment()
	}
	l.signature()
	l.closing()
}

// put draws text in the document language
func (l *layout) put(text string, x, y float64, style TextStyle) Fragment {
	frag := l.text.Draw(l.canvas, text, x, y, style.WithLanguage(l.lang))
	l.fragments = append(l.fragments, frag)
	return frag
}

// plain draws text as English content; script detection still rasterizes CJK
func (l *layout) plain(text string, x, y float64, style TextStyle) Fragment {
	frag := l.text.Draw(l.canvas, text, x, y, style.WithLanguage(i18n.English))
	l.fragments = append(l.fragments, frag)
	return frag
}

// advance is the distance from frag's first baseline to the next entry of a
// line list. Wrapped lines push the next entry down by one line height each.
func advance(frag Fragment, style TextStyle) float64 {
	extra := frag.Lines - 1
	if extra < 0 {
		extra = 0
	}
	return linePitch + float64(extra)*LineHeight(style)
}

func (l *layout) newPage() {
	l.canvas.AddPage()
	l.y = pageTop
}

// ensureSpace starts a new page when a block of height h would cross the printable bottom
func (l *layout) ensureSpace(h float64) {
	if l.y > pageTop && l.y+h > printableBottom {
		l.newPage()
	}
}

func (l *layout) header() {
	top := l.y

	if l.logo != nil && l.logo.Aspect() > 0 {
		h := logoWidth / l.logo.Aspect()
		if err := l.canvas.Image(l.logo.Name, l.logo.Data, l.logo.Format, marginLeft, top, logoWidth, h); err != nil {
			l.logger.Warn("Failed to place logo", zap.Error(err))
		}
	}

	l.put(l.cat.InvoiceNo+" "+l.inv.InvoiceNumber, marginRight, top, metaStyle)
	l.put(l.cat.Date+" "+FormatDate(l.inv.Date), marginRight, top+7, metaStyle)
	if strings.TrimSpace(l.inv.DueDate) != "" {
		l.put(l.cat.DueDate+" "+FormatDate(l.inv.DueDate), marginRight, top+14, metaStyle)
	}

	l.y = top + 15
}

func (l *layout) parties() {
	start := l.y

	l.put(l.cat.From, marginLeft, start, headingStyle)
	fromY := start + 7
	for _, line := range l.fromLines() {
		fromY += advance(l.put(line, marginLeft, fromY, bodyStyle), bodyStyle)
	}

	billY := start + 7
	if lines := l.billToLines(); len(lines) > 0 {
		l.put(l.cat.BillTo, marginRight, start, billHeadingStyle)
		for _, line := range lines {
			billY += advance(l.put(line, marginRight, billY, billStyle), billStyle)
		}
	}

	l.y = math.Max(fromY, billY) + 10
}

func (l *layout) fromLines() []string {
	p := l.profile
	lines := []string{p.CompanyName}
	lines = append(lines, splitNonEmpty(p.CompanyAddress, fromAddressSep)...)
	if v := strings.TrimSpace(p.TaxID); v != "" {
		lines = append(lines, l.cat.TaxID+": "+v)
	}
	if v := strings.TrimSpace(p.Phone); v != "" {
		lines = append(lines, l.cat.Phone+": "+v)
	}
	if v := strings.TrimSpace(p.Email); v != "" {
		lines = append(lines, l.cat.Email+": "+v)
	}
	return nonBlank(lines)
}

// billToLines returns nothing when the recipient name is blank or N/A
func (l *layout) billToLines() []string {
	inv := l.inv
	name := strings.TrimSpace(inv.EmployeeName)
	if name == "" || name == entity.NotApplicable {
		return nil
	}

	lines := []string{name}
	if v := strings.TrimSpace(inv.EmployeeID); v != "" {
		lines = append(lines, l.cat.EmployeeID+": "+v)
	}
	if v := strings.TrimSpace(inv.EmployeeEmail); v != "" {
		lines = append(lines, l.cat.Email+": "+v)
	}
	if v := strings.TrimSpace(inv.EmployeeMobile); v != "" {
		lines = append(lines, l.cat.Phone+": "+v)
	}
	if addr := splitNonEmpty(inv.EmployeeAddress, billAddressSep); len(addr) > 0 {
		lines = append(lines, l.cat.Address+":")
		lines = append(lines, addr...)
	}
	return lines
}

func (l *layout) table() {
	c := l.canvas
	start := l.y

	c.SetFillGray(245)
	c.FillRect(marginLeft, start-5, contentW, 8)
	c.SetDrawGray(0)
	c.SetLineWidth(0.1)
	c.Line(marginLeft, start-5, marginRight, start-5)

	l.put(l.cat.SerialNo, colSerial, start, colSerialHead)
	l.put(l.cat.Description, colDesc, start, colDescHead)
	l.put(l.cat.Hours, colHours, start, colHoursHead)
	l.put(l.cat.UnitPrice, colPrice, start, colPriceHead)
	l.put(l.cat.Amount, colAmount, start, colAmountHead)

	l.y = start + 3
	c.SetDrawGray(200)
	c.Line(marginLeft, l.y, marginRight, l.y)
	l.y += 6

	for i, s := range l.inv.Services {
		l.row(i, s)
	}

	l.y += 3
	c.SetDrawGray(200)
	c.SetLineWidth(0.5)
	c.Line(marginLeft, l.y, marginRight, l.y)
	l.y += 8
}

// row places one service atomically. A row that cannot fit below the cursor
// moves to the next page before any of it is drawn.
func (l *layout) row(i int, s entity.ServiceItem) {
	c := l.canvas

	desc := strings.TrimSpace(s.Description)
	if desc == "" {
		desc = "-"
	}
	lines := l.text.Wrap(c, desc, descStyle)
	height := math.Max(minRowHeight, float64(len(lines))*rowPitch)

	if l.y > pageTop && l.y+height-rowPitch > printableBottom {
		l.newPage()
	}

	if i > 0 {
		c.SetDrawGray(230)
		c.SetLineWidth(0.1)
		c.Line(marginLeft, l.y-2, marginRight, l.y-2)
	}

	l.plain(strconv.Itoa(i+1), colSerial, l.y, serialStyle)
	for j, line := range lines {
		l.plain(line, colDesc, l.y+float64(j)*rowPitch, descStyle)
	}
	l.plain(FormatHours(s.Hours), colHours, l.y, numberStyle)
	l.plain(FormatAmount(s.Rate), colPrice, l.y, numberStyle)
	l.plain(FormatAmount(s.Amount()), colAmount, l.y, numberStyle)

	l.y += height
	if l.y > breakAfterY {
		l.newPage()
	}
}

func (l *layout) totals() {
	c := l.canvas
	country := l.tax.Country
	taxLines := l.tax.Lines()

	l.ensureSpace(totalsStep*float64(len(taxLines)+1) + 3)

	l.put(l.cat.Subtotal+":", totalsLabelX, l.y, totalLabelStyle)
	l.plain(FormatMoney(country, l.tax.SubTotal), marginRight, l.y, totalValueStyle)
	l.y += totalsStep

	for _, line := range taxLines {
		label := fmt.Sprintf("%s (%s):", l.taxLabel(line.Kind), FormatRate(line.Rate))
		l.put(label, totalsLabelX, l.y, totalLabelStyle)
		l.plain(FormatMoney(country, line.Amount), marginRight, l.y, totalValueStyle)
		l.y += totalsStep
	}

	c.SetDrawGray(0)
	c.SetLineWidth(0.3)
	c.Line(totalsLabelX, l.y-2, marginRight, l.y-2)
	l.y += 3

	l.put(l.cat.GrandTotal+":", totalsLabelX, l.y, grandLabelStyle)
	l.plain(FormatMoney(country, l.tax.GrandTotal), marginRight, l.y, grandValueStyle)
	l.y += 15
}

func (l *layout) taxLabel(kind tax.LineKind) string {
	switch kind {
	case tax.LineCGST:
		return l.cat.CGST
	case tax.LineSGST:
		return l.cat.SGST
	default:
		return l.cat.ConsumptionTax
	}
}

// payment is the English bank block
func (l *layout) payment() {
	b := l.bank
	lines := []string{
		l.cat.AccountName + " " + b.AccountHolderName,
		l.cat.AccountNumber + " " + b.AccountNumber,
		l.cat.IFSC + " " + b.IFSCCode,
	}
	if strings.TrimSpace(b.BranchCode) != "" {
		lines = append(lines, l.cat.BranchCode+" "+b.BranchCode)
	}

	l.y += 10
	l.ensureSpace(7 + linePitch*float64(len(lines)+1))

	l.put(l.cat.PaymentInstructions, marginLeft, l.y, headingStyle)
	l.y += 7
	for _, line := range lines {
		l.y += advance(l.put(line, marginLeft, l.y, bodyStyle), bodyStyle)
	}
	l.y += 6
	l.put(l.cat.PaymentNote, marginLeft, l.y, bodyStyle)
	l.y += 15
}

func (l *layout) signature() {
	c := l.canvas
	if l.y+10 > signatureMaxY {
		l.newPage()
	}

	sigY := l.y + 10
	c.SetDrawGray(0)
	c.SetLineWidth(0.3)
	c.Line(signatureLeft, sigY, marginRight, sigY)
	l.put(l.cat.AuthorisedSignature, signatureLabelX, sigY+6, captionStyle)
	l.y = sigY + 15
}

func (l *layout) closing() {
	if !l.lang.IsJapanese() {
		l.ensureSpace(linePitch)
		l.put(l.cat.ThankYou, pageCenter, l.y, thankYouStyle)
		return
	}

	l.y += 15
	l.ensureSpace(10)
	l.put(l.cat.ThankYouMessage, pageCenter, l.y, thankYouStyle)
	l.y += 10
	l.put(l.cat.CompanySeal, sealX, l.y, sealStyle)

	l.japanesePayment()
	l.japaneseContact()
}

// japanesePayment prints the same resolved bank details as the English block,
// with the Japanese field set
func (l *layout) japanesePayment() {
	b := l.bank
	var lines []string
	add := func(label, value string) {
		if v := strings.TrimSpace(value); v != "" {
			lines = append(lines, label+" "+v)
		}
	}
	add(l.cat.BankName, b.BankName)
	add(l.cat.BranchName, b.BranchName)
	add(l.cat.AccountType, b.AccountType)
	add(l.cat.AccountNumber, b.AccountNumber)
	add(l.cat.AccountName, b.AccountHolderName)
	lines = append(lines, l.cat.PaymentNote)

	l.y += 15
	l.ensureSpace(linePitch * float64(len(lines)))

	l.put(l.cat.PaymentInstructions, marginLeft, l.y, headingStyle)
	step := linePitch
	for _, line := range lines {
		l.y += step
		step = advance(l.put(line, jpIndent, l.y, bodyStyle), bodyStyle)
	}
	l.y += step - linePitch
}

func (l *layout) japaneseContact() {
	var lines []string
	if v := strings.TrimSpace(l.contact.Phone); v != "" {
		lines = append(lines, "TEL: "+v+" "+l.cat.PhoneHours)
	}
	email := strings.TrimSpace(l.contact.Email)
	if len(lines) == 0 && email == "" {
		return
	}

	l.y += 12
	n := len(lines)
	if email != "" {
		n++
	}
	l.ensureSpace(linePitch * float64(n))

	l.put(l.cat.ContactInfo, marginLeft, l.y, headingStyle)
	step := linePitch
	for _, line := range lines {
		l.y += step
		step = advance(l.put(line, jpIndent, l.y, bodyStyle), bodyStyle)
	}
	if email != "" {
		l.y += step
		l.plain("Email: "+email, jpIndent, l.y, bodyStyle)
	}
}

func splitNonEmpty(s string, sep *regexp.Regexp) []string {
	var out []string
	for _, part := range sep.Split(s, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func nonBlank(lines []string) []string {
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
