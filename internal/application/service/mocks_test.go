package service

import (
	"context"
	"time"

	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/internal/i18n"
	"github.com/garyjia/invoice-studio/internal/render"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockInvoiceRepo struct {
	invoices   map[string]*entity.Invoice
	createFunc func(ctx context.Context, inv *entity.Invoice) error
	searchFunc func(ctx context.Context, filter entity.InvoiceFilter) ([]*entity.Invoice, error)
	countFunc  func(ctx context.Context, filter entity.InvoiceFilter) (int, error)
	deleted    []string
	updated    []*entity.Invoice
}

func newMockInvoiceRepo(invoices ...*entity.Invoice) *mockInvoiceRepo {
	m := &mockInvoiceRepo{invoices: make(map[string]*entity.Invoice)}
	for _, inv := range invoices {
		m.invoices[inv.ID] = inv
	}
	return m
}

func (m *mockInvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, inv)
	}
	m.invoices[inv.ID] = inv
	return nil
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return m.invoices[id], nil
}

func (m *mockInvoiceRepo) Update(ctx context.Context, inv *entity.Invoice) error {
	m.updated = append(m.updated, inv)
	m.invoices[inv.ID] = inv
	return nil
}

func (m *mockInvoiceRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.invoices, id)
	return nil
}

func (m *mockInvoiceRepo) Search(ctx context.Context, filter entity.InvoiceFilter) ([]*entity.Invoice, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockInvoiceRepo) Count(ctx context.Context, filter entity.InvoiceFilter) (int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

type mockProfileRepo struct {
	profile *entity.CompanyProfile
	getErr  error
	saved   []*entity.CompanyProfile
}

func (m *mockProfileRepo) Get(ctx context.Context) (*entity.CompanyProfile, error) {
	return m.profile, m.getErr
}

func (m *mockProfileRepo) Save(ctx context.Context, profile *entity.CompanyProfile) error {
	m.saved = append(m.saved, profile)
	m.profile = profile
	return nil
}

type mockEmailJobRepo struct {
	created []*entity.EmailJob
}

func (m *mockEmailJobRepo) Create(ctx context.Context, job *entity.EmailJob) error {
	job.ID = "job-1"
	m.created = append(m.created, job)
	return nil
}

func (m *mockEmailJobRepo) GetByID(ctx context.Context, id string) (*entity.EmailJob, error) {
	return nil, nil
}

func (m *mockEmailJobRepo) GetDue(ctx context.Context, now time.Time, limit int) ([]*entity.EmailJob, error) {
	return nil, nil
}

func (m *mockEmailJobRepo) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	return nil
}

func (m *mockEmailJobRepo) MarkRetry(ctx context.Context, id string, attempts int, lastError string, next time.Time) error {
	return nil
}

func (m *mockEmailJobRepo) MarkFailed(ctx context.Context, id string, attempts int, lastError string) error {
	return nil
}

func (m *mockEmailJobRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*entity.EmailJob, error) {
	return m.created, nil
}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockStorage struct {
	files   map[string][]byte
	saveErr error
}

func newMockStorage() *mockStorage {
	return &mockStorage{files: make(map[string][]byte)}
}

func (m *mockStorage) Save(ctx context.Context, path string, content []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.files[path] = content
	return nil
}

func (m *mockStorage) Read(ctx context.Context, path string) ([]byte, error) {
	return m.files[path], nil
}

func (m *mockStorage) Exists(ctx context.Context, path string) bool {
	_, ok := m.files[path]
	return ok
}

func (m *mockStorage) Delete(ctx context.Context, path string) error {
	delete(m.files, path)
	return nil
}

func (m *mockStorage) GetFullPath(relativePath string) string {
	return "/data/" + relativePath
}

type mockRenderer struct {
	renderFunc func(ctx context.Context, inv *entity.Invoice, lang i18n.Language, profile *entity.CompanyProfile) (*render.Document, error)
	profiles   []*entity.CompanyProfile
}

func (m *mockRenderer) Render(ctx context.Context, inv *entity.Invoice, lang i18n.Language, profile *entity.CompanyProfile) (*render.Document, error) {
	m.profiles = append(m.profiles, profile)
	if m.renderFunc != nil {
		return m.renderFunc(ctx, inv, lang, profile)
	}
	return &render.Document{
		Bytes:       []byte("%PDF-1.3 " + inv.InvoiceNumber),
		Filename:    render.Filename(inv.InvoiceNumber, lang),
		ContentType: render.ContentTypePDF,
		Pages:       1,
		Language:    lang,
	}, nil
}

type mockPreviewer struct {
	err error
}

func (m *mockPreviewer) FirstPage(pdf []byte) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []byte("\x89PNG"), nil
}
