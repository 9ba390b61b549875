package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vetclinic/backend/internal/domain/billing"
	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/infrastructure/persistence/models"
)

// GormStockDeliverer ships billed products out of inventory. Each
// request deducts on-hand stock and leaves a stock move row; lot-tracked
// products must name the lot they were taken from.
type GormStockDeliverer struct {
	db *gorm.DB
}

// NewGormStockDeliverer creates a new GormStockDeliverer
func NewGormStockDeliverer(db *gorm.DB) *GormStockDeliverer {
	return &GormStockDeliverer{db: db}
}

// Deliver processes all requests in one transaction
func (d *GormStockDeliverer) Deliver(ctx context.Context, requests []billing.DeliveryRequest) error {
	if len(requests) == 0 {
		return nil
	}
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, req := range requests {
			if err := d.deliverOne(tx, req); err != nil {
				return err
			}
		}
		return nil
	})
}

func (d *GormStockDeliverer) deliverOne(tx *gorm.DB, req billing.DeliveryRequest) error {
	var model models.ProductModel
	if err := tx.First(&model, "id = ?", req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	product := model.ToDomain()
	if product.IsLotTracked() && req.LotName == "" {
		return shared.NewDomainErrorf(shared.CodeDeliveryFailure, "Product '%s' is lot tracked and needs a lot", product.Name)
	}
	if err := product.DeductStock(req.Quantity); err != nil {
		return err
	}
	model.FromDomain(product)
	if err := tx.Save(&model).Error; err != nil {
		return err
	}
	move := models.StockMoveModel{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		LotName:   req.LotName,
		Origin:    req.Origin,
		MovedAt:   time.Now(),
	}
	move.ID = uuid.New()
	return tx.Create(&move).Error
}
