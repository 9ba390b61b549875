package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vetclinic/backend/internal/domain/clinic"
	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
	"github.com/vetclinic/backend/internal/infrastructure/persistence/models"
)

// GormOwnerRepository implements OwnerRepository using GORM
type GormOwnerRepository struct {
	db *gorm.DB
}

// NewGormOwnerRepository creates a new GormOwnerRepository
func NewGormOwnerRepository(db *gorm.DB) *GormOwnerRepository {
	return &GormOwnerRepository{db: db}
}

// FindByID finds an owner by its ID
func (r *GormOwnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*clinic.Owner, error) {
	var model models.OwnerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByContactNumber finds an owner by normalized phone number
func (r *GormOwnerRepository) FindByContactNumber(ctx context.Context, phone valueobject.Phone) (*clinic.Owner, error) {
	var model models.OwnerModel
	if err := r.db.WithContext(ctx).
		Where("contact_number = ?", phone.String()).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates an owner
func (r *GormOwnerRepository) Save(ctx context.Context, owner *clinic.Owner) error {
	var model models.OwnerModel
	model.FromDomain(owner)
	return r.db.WithContext(ctx).Save(&model).Error
}
