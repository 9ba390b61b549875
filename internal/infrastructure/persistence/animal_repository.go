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

// GormAnimalRepository implements AnimalRepository using GORM
type GormAnimalRepository struct {
	db *gorm.DB
}

// NewGormAnimalRepository creates a new GormAnimalRepository
func NewGormAnimalRepository(db *gorm.DB) *GormAnimalRepository {
	return &GormAnimalRepository{db: db}
}

// FindByID finds an animal by its ID
func (r *GormAnimalRepository) FindByID(ctx context.Context, id uuid.UUID) (*clinic.Animal, error) {
	var model models.AnimalModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByMicrochip finds an animal by its microchip number
func (r *GormAnimalRepository) FindByMicrochip(ctx context.Context, microchipNo string) (*clinic.Animal, error) {
	var model models.AnimalModel
	if err := r.db.WithContext(ctx).
		Where("microchip_no = ?", microchipNo).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOwner returns all animals registered to an owner
func (r *GormAnimalRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*clinic.Animal, error) {
	var animalModels []models.AnimalModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&animalModels).Error; err != nil {
		return nil, err
	}
	return toDomainAnimals(animalModels), nil
}

// SearchByName returns active animals whose name contains the term,
// case-insensitively
func (r *GormAnimalRepository) SearchByName(ctx context.Context, name string, limit int) ([]*clinic.Animal, error) {
	var animalModels []models.AnimalModel
	if err := r.db.WithContext(ctx).
		Where("lower(name) LIKE lower(?)", "%"+name+"%").
		Order("name ASC").
		Limit(limit).
		Find(&animalModels).Error; err != nil {
		return nil, err
	}
	return toDomainAnimals(animalModels), nil
}

// SearchByMicrochipPrefix returns animals whose microchip number starts
// with the given prefix
func (r *GormAnimalRepository) SearchByMicrochipPrefix(ctx context.Context, prefix string, limit int) ([]*clinic.Animal, error) {
	var animalModels []models.AnimalModel
	if err := r.db.WithContext(ctx).
		Where("microchip_no LIKE ?", prefix+"%").
		Order("microchip_no ASC").
		Limit(limit).
		Find(&animalModels).Error; err != nil {
		return nil, err
	}
	return toDomainAnimals(animalModels), nil
}

func toDomainAnimals(animalModels []models.AnimalModel) []*clinic.Animal {
	animals := make([]*clinic.Animal, len(animalModels))
	for i := range animalModels {
		animals[i] = animalModels[i].ToDomain()
	}
	return animals
}

// Save creates or updates an animal
func (r *GormAnimalRepository) Save(ctx context.Context, animal *clinic.Animal) error {
	var model models.AnimalModel
	model.FromDomain(animal)
	return r.db.WithContext(ctx).Save(&model).Error
}
