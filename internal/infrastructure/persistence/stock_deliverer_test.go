package persistence

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetclinic/backend/internal/domain/billing"
	"github.com/vetclinic/backend/internal/domain/catalog"
	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/infrastructure/persistence/models"
)

func TestGormStockDeliverer_Deliver(t *testing.T) {
	db := setupTestDB(t)
	products := NewGormProductRepository(db)
	deliverer := NewGormStockDeliverer(db)
	ctx := context.Background()

	shampoo, err := catalog.NewProduct("Medicated Shampoo", decimal.NewFromInt(450), catalog.TrackingNone)
	require.NoError(t, err)
	require.NoError(t, shampoo.ReceiveStock(decimal.NewFromInt(10)))
	require.NoError(t, products.Save(ctx, shampoo))

	vaccine, err := catalog.NewProduct("Rabies Vaccine", decimal.NewFromInt(1200), catalog.TrackingLot)
	require.NoError(t, err)
	require.NoError(t, vaccine.ReceiveStock(decimal.NewFromInt(5)))
	require.NoError(t, products.Save(ctx, vaccine))

	requests := []billing.DeliveryRequest{
		{ProductID: shampoo.GetID(), Quantity: decimal.NewFromInt(2), Origin: "VIS00001"},
		{ProductID: vaccine.GetID(), Quantity: decimal.NewFromInt(1), LotName: "RAB-2026-03", Origin: "VIS00001"},
	}
	require.NoError(t, deliverer.Deliver(ctx, requests))

	loaded, err := products.FindByID(ctx, shampoo.GetID())
	require.NoError(t, err)
	assert.True(t, loaded.StockQuantity.Equal(decimal.NewFromInt(8)))

	var moves []models.StockMoveModel
	require.NoError(t, db.Where("origin = ?", "VIS00001").Find(&moves).Error)
	assert.Len(t, moves, 2)
}

func TestGormStockDeliverer_LotRequiredForTrackedProducts(t *testing.T) {
	db := setupTestDB(t)
	products := NewGormProductRepository(db)
	deliverer := NewGormStockDeliverer(db)
	ctx := context.Background()

	vaccine, err := catalog.NewProduct("Rabies Vaccine", decimal.NewFromInt(1200), catalog.TrackingLot)
	require.NoError(t, err)
	require.NoError(t, products.Save(ctx, vaccine))

	err = deliverer.Deliver(ctx, []billing.DeliveryRequest{
		{ProductID: vaccine.GetID(), Quantity: decimal.NewFromInt(1), Origin: "VIS00002"},
	})
	assert.True(t, shared.IsDomainError(err, shared.CodeDeliveryFailure))

	// the failed transaction leaves no stock move behind
	var count int64
	require.NoError(t, db.Model(&models.StockMoveModel{}).Count(&count).Error)
	assert.Zero(t, count)
}
