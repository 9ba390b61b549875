package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetclinic/backend/internal/domain/billing"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
)

func TestGormPaymentRepository_SaveAndReload(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPaymentRepository(db)
	ctx := context.Background()

	amount := valueobject.NewMoneyBDT(decimal.NewFromInt(400))
	payment, err := billing.NewPayment("PAY/2026/00001", uuid.New(), uuid.New(), amount)
	require.NoError(t, err)
	visitID := uuid.New()
	payment.LinkVisit(visitID)
	payment.Allocations = []billing.PaymentAllocation{
		{InvoiceID: uuid.New(), Amount: valueobject.NewMoneyBDT(decimal.NewFromInt(300))},
		{InvoiceID: uuid.New(), Amount: valueobject.NewMoneyBDT(decimal.NewFromInt(100))},
	}
	require.NoError(t, repo.Save(ctx, payment))

	byVisit, err := repo.FindByVisit(ctx, visitID)
	require.NoError(t, err)
	require.Len(t, byVisit, 1)
	loaded := byVisit[0]
	assert.Equal(t, "PAY/2026/00001", loaded.Number)
	assert.True(t, loaded.Amount.Amount().Equal(decimal.NewFromInt(400)))
	require.Len(t, loaded.Allocations, 2)
	assert.True(t, loaded.Allocations[0].Amount.Amount().Equal(decimal.NewFromInt(300)))
	assert.True(t, loaded.Reconciled)
	assert.False(t, loaded.Manual)
}
