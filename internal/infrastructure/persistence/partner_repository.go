package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vetclinic/backend/internal/domain/billing"
	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/infrastructure/persistence/models"
)

// GormBillingPartnerRepository implements BillingPartnerRepository using GORM
type GormBillingPartnerRepository struct {
	db *gorm.DB
}

// NewGormBillingPartnerRepository creates a new GormBillingPartnerRepository
func NewGormBillingPartnerRepository(db *gorm.DB) *GormBillingPartnerRepository {
	return &GormBillingPartnerRepository{db: db}
}

// FindByID finds a billing partner by its ID
func (r *GormBillingPartnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.BillingPartner, error) {
	var model models.BillingPartnerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOwner finds the billing partner created for an owner
func (r *GormBillingPartnerRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*billing.BillingPartner, error) {
	var model models.BillingPartnerModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a billing partner
func (r *GormBillingPartnerRepository) Save(ctx context.Context, partner *billing.BillingPartner) error {
	var model models.BillingPartnerModel
	model.FromDomain(partner)
	return r.db.WithContext(ctx).Save(&model).Error
}
