package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-studio/internal/application/service"
	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/internal/i18n"
	"github.com/garyjia/invoice-studio/pkg/database"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Database.Path = database.MemoryPath
	cfg.Storage.UploadDir = t.TempDir()
	cfg.Render.FallbackProfile = entity.CompanyProfile{
		CompanyName:    "Acme Consulting",
		CompanyAddress: "1 Main Street",
	}
	return cfg
}

func TestNewContainer_Validation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(testConfig(t), nil)
	assert.Error(t, err)

	cfg := testConfig(t)
	cfg.Email.SMTP.Host = "smtp.example.com"
	_, err = NewContainer(cfg, zap.NewNop())
	assert.ErrorContains(t, err, "email.from_address")
}

func TestContainer_Lifecycle(t *testing.T) {
	c, err := NewContainer(testConfig(t), zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))
	assert.True(t, c.Ready())
	assert.Error(t, c.Start(ctx), "second start")

	status := c.Health(ctx)
	assert.True(t, status.Overall)
	assert.True(t, status.Components["database"].Healthy)
	assert.NoError(t, c.Check(ctx))
	assert.Equal(t, 0, c.Workers().GetWorkerCount(), "no mailer, no outbox worker")

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start(ctx))
}

func TestContainer_ServicesAreWired(t *testing.T) {
	c, err := NewContainer(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	ctx := context.Background()
	inv := &entity.Invoice{
		InvoiceNumber: "INV-100",
		Date:          "2024-05-01",
		EmployeeName:  "Priya",
		EmployeeEmail: "priya@example.com",
		TaxRate:       18,
		Services: []entity.ServiceItem{
			{Description: "Design review", Hours: 4, Rate: 2500},
		},
	}
	require.NoError(t, c.Services().Invoice.Create(ctx, inv))

	doc, err := c.Services().Document.Render(ctx, inv.ID, i18n.English)
	require.NoError(t, err)
	assert.Equal(t, "invoice_INV-100.pdf", doc.Filename)
	assert.InDelta(t, 11800.0, doc.Breakdown.GrandTotal, 1e-9)

	job, err := c.Services().Email.Queue(ctx, inv.ID, service.EmailRequest{})
	require.NoError(t, err)
	assert.Equal(t, "priya@example.com", job.Recipient)
	assert.Equal(t, entity.EmailStatusPending, job.Status)
}
