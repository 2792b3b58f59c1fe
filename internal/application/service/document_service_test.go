package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/internal/i18n"
	"github.com/garyjia/invoice-studio/internal/render"
)

func newDocumentFixture() (*mockInvoiceRepo, *mockRenderer, *mockPreviewer) {
	inv := validInvoice()
	inv.ID = "inv-1"
	inv.InvoiceNumber = "INV-001"
	return newMockInvoiceRepo(inv), &mockRenderer{}, &mockPreviewer{}
}

func TestDocumentService_Render(t *testing.T) {
	stored := &entity.CompanyProfile{CompanyName: "Acme"}
	invoices, renderer, previewer := newDocumentFixture()
	profiles := NewProfileService(&mockProfileRepo{profile: stored}, newMockStorage(), ProfileConfig{}, nopLogger{})
	svc := NewDocumentService(invoices, profiles, renderer, previewer, nopLogger{})

	doc, err := svc.Render(context.Background(), "inv-1", i18n.Japanese)
	require.NoError(t, err)
	assert.Equal(t, "請求書_INV-001.pdf", doc.Filename)
	require.Len(t, renderer.profiles, 1)
	assert.Same(t, stored, renderer.profiles[0])

	_, err = svc.Render(context.Background(), "missing", i18n.English)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestDocumentService_Render_Error(t *testing.T) {
	invoices, renderer, previewer := newDocumentFixture()
	renderer.renderFunc = func(ctx context.Context, inv *entity.Invoice, lang i18n.Language, profile *entity.CompanyProfile) (*render.Document, error) {
		return nil, render.ErrNilInvoice
	}
	profiles := NewProfileService(&mockProfileRepo{}, newMockStorage(), ProfileConfig{}, nopLogger{})
	svc := NewDocumentService(invoices, profiles, renderer, previewer, nopLogger{})

	_, err := svc.Render(context.Background(), "inv-1", i18n.English)
	assert.ErrorIs(t, err, render.ErrNilInvoice)
}

func TestDocumentService_Preview(t *testing.T) {
	invoices, renderer, previewer := newDocumentFixture()
	profiles := NewProfileService(&mockProfileRepo{}, newMockStorage(), ProfileConfig{}, nopLogger{})
	svc := NewDocumentService(invoices, profiles, renderer, previewer, nopLogger{})

	img, err := svc.Preview(context.Background(), "inv-1", i18n.English)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), img)

	previewer.err = errors.New("mupdf failed")
	_, err = svc.Preview(context.Background(), "inv-1", i18n.English)
	assert.Error(t, err)
}
