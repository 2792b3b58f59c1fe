// Package render turns an invoice and a company profile into a PDF document.
//
// The Assembler computes the tax breakdown once, runs the page layout on a
// fresh gofpdf document and serializes it only after the layout has finished.
// Text that the built-in PDF font cannot draw (Japanese) is rasterized by a
// Rasterizer and embedded as an image; when that fails the fragment falls back
// to the vector font and the outcome is reported in Document.Fragments.
package render

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/internal/domain/tax"
	"github.com/garyjia/invoice-studio/internal/i18n"
)

const (
	// ContentTypePDF is the media type of rendered documents
	ContentTypePDF = "application/pdf"

	producer = "invoice-studio"
)

// Config holds the values the assembler falls back to when the caller's
// profile leaves them out
type Config struct {
	Creator string
	Author  string

	// FallbackProfile is used when no profile is passed to Render
	FallbackProfile entity.CompanyProfile
	// FallbackBank fills bank fields missing from the profile, one field at a time
	FallbackBank entity.BankDetails
	// Contact is printed in the Japanese closing block when the profile has no phone or email
	Contact Contact
}

// Document is a finished render
type Document struct {
	Bytes       []byte
	Filename    string
	ContentType string
	Pages       int
	Fragments   []Fragment
	Breakdown   tax.Breakdown
	Language    i18n.Language
}

// Fallbacks counts fragments that needed rasterizing but were drawn as vector text
func (d *Document) Fallbacks() int {
	n := 0
	for _, f := range d.Fragments {
		if f.Fallback() {
			n++
		}
	}
	return n
}

// ContentDisposition returns an attachment header with an ASCII filename and
// the UTF-8 filename* parameter
func (d *Document) ContentDisposition() string {
	ascii := asciiFilename(d.Filename)
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, ascii, url.PathEscape(d.Filename))
}

// Filename returns invoice_<n>.pdf, or 請求書_<n>.pdf for Japanese documents
func Filename(invoiceNumber string, lang i18n.Language) string {
	n := sanitizeFilename(invoiceNumber)
	if lang.IsJapanese() {
		return "請求書_" + n + ".pdf"
	}
	return "invoice_" + n + ".pdf"
}

// Assembler renders invoices. It keeps no per-render state and may be used
// from several goroutines at once.
type Assembler struct {
	cfg    Config
	text   *TextRenderer
	logos  LogoLoader
	logger *zap.Logger
}

// NewAssembler creates an assembler. raster and logos may be nil.
func NewAssembler(cfg Config, raster Rasterizer, logos LogoLoader, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{
		cfg:    cfg,
		text:   NewTextRenderer(raster, logger),
		logos:  logos,
		logger: logger,
	}
}

// Render lays out inv in lang and serializes the PDF. A nil profile selects the
// configured fallback profile. The same inputs always produce the same bytes.
func (a *Assembler) Render(ctx context.Context, inv *entity.Invoice, lang i18n.Language, profile *entity.CompanyProfile) (*Document, error) {
	if inv == nil {
		return nil, ErrNilInvoice
	}
	if lang != i18n.English && lang != i18n.Japanese {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prof := a.resolveProfile(profile)
	breakdown := tax.ForInvoice(inv)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, pageTop, marginLeft)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(true)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Invoice "+inv.InvoiceNumber, true)
	pdf.SetAuthor(a.cfg.Author, true)
	pdf.SetCreator(a.cfg.Creator, true)
	pdf.SetProducer(producer, false)
	stamp := documentTime(inv)
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)

	lay := &layout{
		canvas:  newPDFCanvas(pdf),
		text:    a.text,
		logger:  a.logger.With(zap.String("invoice_number", inv.InvoiceNumber), zap.String("language", string(lang))),
		cat:     i18n.CatalogFor(lang),
		lang:    lang,
		inv:     inv,
		profile: prof,
		bank:    a.resolveBank(prof),
		tax:     breakdown,
		logo:    a.loadLogo(ctx, prof.CompanyLogoURL),
		contact: a.resolveContact(prof),
	}
	lay.run()

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to lay out invoice %s: %w", inv.InvoiceNumber, err)
	}

	pages := pdf.PageCount()
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize invoice %s: %w", inv.InvoiceNumber, err)
	}

	doc := &Document{
		Bytes:       buf.Bytes(),
		Filename:    Filename(inv.InvoiceNumber, lang),
		ContentType: ContentTypePDF,
		Pages:       pages,
		Fragments:   lay.fragments,
		Breakdown:   breakdown,
		Language:    lang,
	}

	a.logger.Info("Invoice rendered",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("language", string(lang)),
		zap.Int("pages", doc.Pages),
		zap.Int("bytes", len(doc.Bytes)),
		zap.Int("raster_fallbacks", doc.Fallbacks()))

	return doc, nil
}

func (a *Assembler) resolveProfile(profile *entity.CompanyProfile) entity.CompanyProfile {
	if profile == nil {
		return a.cfg.FallbackProfile
	}
	return *profile
}

// resolveBank fills each missing bank field from the fallback. The account
// holder falls back to the company name before the configured value.
func (a *Assembler) resolveBank(prof entity.CompanyProfile) entity.BankDetails {
	b := prof.Bank()
	fb := a.cfg.FallbackBank

	if strings.TrimSpace(b.AccountHolderName) == "" {
		b.AccountHolderName = firstNonBlank(prof.CompanyName, fb.AccountHolderName)
	}
	b.BankName = firstNonBlank(b.BankName, fb.BankName)
	b.AccountNumber = firstNonBlank(b.AccountNumber, fb.AccountNumber)
	b.IFSCCode = firstNonBlank(b.IFSCCode, fb.IFSCCode)
	b.BranchName = firstNonBlank(b.BranchName, fb.BranchName)
	b.BranchCode = firstNonBlank(b.BranchCode, fb.BranchCode)
	b.AccountType = firstNonBlank(b.AccountType, fb.AccountType)
	return b
}

func (a *Assembler) resolveContact(prof entity.CompanyProfile) Contact {
	return Contact{
		Phone: firstNonBlank(prof.Phone, a.cfg.Contact.Phone),
		Email: firstNonBlank(prof.Email, a.cfg.Contact.Email),
	}
}

// loadLogo never fails the render; problems are logged and the logo is skipped
func (a *Assembler) loadLogo(ctx context.Context, ref string) *Logo {
	if a.logos == nil || strings.TrimSpace(ref) == "" {
		return nil
	}
	logo, err := a.logos.Load(ctx, ref)
	if err != nil {
		a.logger.Warn("Failed to load company logo, skipping",
			zap.String("logo_url", ref),
			zap.Error(err))
		return nil
	}
	return logo
}

// documentTime pins the PDF timestamps so identical inputs give identical bytes
func documentTime(inv *entity.Invoice) time.Time {
	if t := inv.IssueDate(); !t.IsZero() {
		return t.UTC()
	}
	if !inv.CreatedAt.IsZero() {
		return inv.CreatedAt.UTC()
	}
	return time.Unix(0, 0).UTC()
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func sanitizeFilename(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "draft"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, s)
}

func asciiFilename(name string) string {
	if strings.HasPrefix(name, "請求書_") {
		name = "invoice_" + strings.TrimPrefix(name, "請求書_")
	}
	return strings.Map(func(r rune) rune {
		if r > 0x7E || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, name)
}
