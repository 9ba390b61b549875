package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vetclinic/backend/internal/domain/shared"
	domainvisit "github.com/vetclinic/backend/internal/domain/visit"
	"github.com/vetclinic/backend/internal/infrastructure/persistence/models"
)

// GormVisitRepository implements VisitRepository using GORM
type GormVisitRepository struct {
	db *gorm.DB
}

// NewGormVisitRepository creates a new GormVisitRepository
func NewGormVisitRepository(db *gorm.DB) *GormVisitRepository {
	return &GormVisitRepository{db: db}
}

func (r *GormVisitRepository) withAssociations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Invoices", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
}

// FindByID finds a visit by its ID
func (r *GormVisitRepository) FindByID(ctx context.Context, id uuid.UUID) (*domainvisit.Visit, error) {
	var model models.VisitModel
	if err := r.withAssociations(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReference finds a visit by its document reference
func (r *GormVisitRepository) FindByReference(ctx context.Context, reference string) (*domainvisit.Visit, error) {
	var model models.VisitModel
	if err := r.withAssociations(ctx).
		Where("reference = ?", reference).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAnimal returns the animal's visits, newest first
func (r *GormVisitRepository) FindByAnimal(ctx context.Context, animalID uuid.UUID) ([]*domainvisit.Visit, error) {
	var visitModels []models.VisitModel
	if err := r.withAssociations(ctx).
		Where("animal_id = ?", animalID).
		Order("date DESC, created_at DESC").
		Find(&visitModels).Error; err != nil {
		return nil, err
	}
	return toDomainVisits(visitModels), nil
}

// Search returns visits matching the history query, newest first
func (r *GormVisitRepository) Search(ctx context.Context, query domainvisit.HistoryQuery) ([]*domainvisit.Visit, error) {
	db := r.withAssociations(ctx)
	if query.AnimalID != nil {
		db = db.Where("animal_id = ?", *query.AnimalID)
	}
	if query.OwnerID != nil {
		db = db.Where("owner_id = ?", *query.OwnerID)
	}
	if query.DateFrom != nil {
		db = db.Where("date >= ?", *query.DateFrom)
	}
	if query.DateTo != nil {
		db = db.Where("date <= ?", *query.DateTo)
	}
	db = db.Order("date DESC, created_at DESC")
	if query.Limit > 0 {
		db = db.Limit(query.Limit)
	}
	var visitModels []models.VisitModel
	if err := db.Find(&visitModels).Error; err != nil {
		return nil, err
	}
	return toDomainVisits(visitModels), nil
}

// Save creates or updates a visit together with its lines and invoice
// links. Lines removed from the aggregate are deleted.
func (r *GormVisitRepository) Save(ctx context.Context, visit *domainvisit.Visit) error {
	var model models.VisitModel
	model.FromDomain(visit)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keptLineIDs := make([]uuid.UUID, len(model.Lines))
		for i := range model.Lines {
			keptLineIDs[i] = model.Lines[i].ID
		}
		stale := tx.Where("visit_id = ?", visit.GetID())
		if len(keptLineIDs) > 0 {
			stale = stale.Where("id NOT IN ?", keptLineIDs)
		}
		if err := stale.Delete(&models.VisitLineModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("visit_id = ?", visit.GetID()).
			Delete(&models.VisitInvoiceModel{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&model).Error
	})
}

func toDomainVisits(visitModels []models.VisitModel) []*domainvisit.Visit {
	visits := make([]*domainvisit.Visit, len(visitModels))
	for i := range visitModels {
		visits[i] = visitModels[i].ToDomain()
	}
	return visits
}
