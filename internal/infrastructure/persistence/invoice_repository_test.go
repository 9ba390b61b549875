package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetclinic/backend/internal/domain/billing"
	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
)

func newPostedInvoice(t *testing.T, number string, partnerID uuid.UUID, date time.Time, amount int64) *billing.Invoice {
	t.Helper()
	inv, err := billing.NewInvoice(number, partnerID, date, "VIS00001")
	require.NoError(t, err)
	line, err := billing.NewInvoiceLine(nil, "Grooming", decimal.NewFromInt(1), decimal.NewFromInt(amount), decimal.Zero, uuid.New())
	require.NoError(t, err)
	require.NoError(t, inv.AddLine(line))
	require.NoError(t, inv.Post())
	return inv
}

func TestGormInvoiceRepository_SaveAndReload(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	partnerID := uuid.New()
	inv := newPostedInvoice(t, "INV/2026/00001", partnerID, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), 500)
	require.NoError(t, repo.Save(ctx, inv))

	loaded, err := repo.FindByID(ctx, inv.GetID())
	require.NoError(t, err)
	assert.Equal(t, "INV/2026/00001", loaded.Number)
	assert.Equal(t, billing.InvoiceStatePosted, loaded.State)
	require.Len(t, loaded.Lines, 1)
	assert.True(t, loaded.AmountResidual.Amount().Equal(decimal.NewFromInt(500)))

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormInvoiceRepository_FindOutstandingByPartner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	partnerID := uuid.New()
	newer := newPostedInvoice(t, "INV/2026/00011", partnerID, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), 200)
	older := newPostedInvoice(t, "INV/2026/00012", partnerID, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 300)
	paid := newPostedInvoice(t, "INV/2026/00013", partnerID, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), 100)
	require.NoError(t, paid.ApplyPayment(valueobject.NewMoneyBDT(decimal.NewFromInt(100))))
	other := newPostedInvoice(t, "INV/2026/00014", uuid.New(), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 400)

	for _, inv := range []*billing.Invoice{newer, older, paid, other} {
		require.NoError(t, repo.Save(ctx, inv))
	}

	outstanding, err := repo.FindOutstandingByPartner(ctx, partnerID)
	require.NoError(t, err)
	require.Len(t, outstanding, 2)
	assert.Equal(t, "INV/2026/00012", outstanding[0].Number)
	assert.Equal(t, "INV/2026/00011", outstanding[1].Number)
}

func TestGormInvoiceRepository_FindPostedBetween(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	inside := newPostedInvoice(t, "INV/2026/00021", uuid.New(), time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), 700)
	outside := newPostedInvoice(t, "INV/2026/00022", uuid.New(), time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC), 900)
	require.NoError(t, repo.Save(ctx, inside))
	require.NoError(t, repo.Save(ctx, outside))

	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 30, 23, 59, 59, 0, time.UTC)
	invoices, err := repo.FindPostedBetween(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "INV/2026/00021", invoices[0].Number)
}
