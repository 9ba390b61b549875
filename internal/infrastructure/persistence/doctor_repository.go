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

// GormDoctorRepository implements DoctorRepository using GORM
type GormDoctorRepository struct {
	db *gorm.DB
}

// NewGormDoctorRepository creates a new GormDoctorRepository
func NewGormDoctorRepository(db *gorm.DB) *GormDoctorRepository {
	return &GormDoctorRepository{db: db}
}

// FindByID finds a doctor by its ID
func (r *GormDoctorRepository) FindByID(ctx context.Context, id uuid.UUID) (*clinic.Doctor, error) {
	var model models.DoctorModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByContactNumber finds a doctor by normalized phone number
func (r *GormDoctorRepository) FindByContactNumber(ctx context.Context, phone valueobject.Phone) (*clinic.Doctor, error) {
	var model models.DoctorModel
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

// FindByBranch returns all doctors bound to a branch
func (r *GormDoctorRepository) FindByBranch(ctx context.Context, branchID uuid.UUID) ([]*clinic.Doctor, error) {
	var doctorModels []models.DoctorModel
	if err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("name ASC").
		Find(&doctorModels).Error; err != nil {
		return nil, err
	}
	doctors := make([]*clinic.Doctor, len(doctorModels))
	for i := range doctorModels {
		doctors[i] = doctorModels[i].ToDomain()
	}
	return doctors, nil
}

// Save creates or updates a doctor
func (r *GormDoctorRepository) Save(ctx context.Context, doctor *clinic.Doctor) error {
	var model models.DoctorModel
	model.FromDomain(doctor)
	return r.db.WithContext(ctx).Save(&model).Error
}
