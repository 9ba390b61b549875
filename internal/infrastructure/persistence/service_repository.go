package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vetclinic/backend/internal/domain/clinic"
	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/infrastructure/persistence/models"
)

// GormServiceRepository implements ServiceRepository using GORM
type GormServiceRepository struct {
	db *gorm.DB
}

// NewGormServiceRepository creates a new GormServiceRepository
func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

func (r *GormServiceRepository) withComponents(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Components", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// FindByID finds a service by its ID
func (r *GormServiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*clinic.Service, error) {
	var model models.ServiceModel
	if err := r.withComponents(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the services matching the given IDs
func (r *GormServiceRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*clinic.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var serviceModels []models.ServiceModel
	if err := r.withComponents(ctx).
		Where("id IN ?", ids).
		Find(&serviceModels).Error; err != nil {
		return nil, err
	}
	services := make([]*clinic.Service, len(serviceModels))
	for i := range serviceModels {
		services[i] = serviceModels[i].ToDomain()
	}
	return services, nil
}

// FindAll returns every service, active first then by name
func (r *GormServiceRepository) FindAll(ctx context.Context) ([]*clinic.Service, error) {
	var serviceModels []models.ServiceModel
	if err := r.withComponents(ctx).
		Order("active DESC, name ASC").
		Find(&serviceModels).Error; err != nil {
		return nil, err
	}
	services := make([]*clinic.Service, len(serviceModels))
	for i := range serviceModels {
		services[i] = serviceModels[i].ToDomain()
	}
	return services, nil
}

// Save creates or updates a service, replacing its component links
func (r *GormServiceRepository) Save(ctx context.Context, service *clinic.Service) error {
	var model models.ServiceModel
	model.FromDomain(service)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_id = ?", service.GetID()).
			Delete(&models.ServiceComponentModel{}).Error; err != nil {
			return err
		}
		return tx.Save(&model).Error
	})
}
