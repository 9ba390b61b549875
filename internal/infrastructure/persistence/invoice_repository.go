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

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	})
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.withLines(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByVisit returns the invoices generated from a visit
func (r *GormInvoiceRepository) FindByVisit(ctx context.Context, visitID uuid.UUID) ([]*billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.withLines(ctx).
		Where("visit_id = ?", visitID).
		Order("created_at ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toDomainInvoices(invoiceModels), nil
}

// FindOutstandingByPartner returns the partner's posted unpaid or
// partially paid invoices, oldest invoice date first with ties broken
// by creation order and ID.
func (r *GormInvoiceRepository) FindOutstandingByPartner(ctx context.Context, partnerID uuid.UUID) ([]*billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.withLines(ctx).
		Where("partner_id = ? AND state = ? AND payment_state IN ?",
			partnerID, string(billing.InvoiceStatePosted),
			[]string{string(billing.InvoiceNotPaid), string(billing.InvoicePartial)}).
		Order("invoice_date ASC, created_at ASC, id ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toDomainInvoices(invoiceModels), nil
}

// FindPostedBetween returns posted invoices dated inside the window
func (r *GormInvoiceRepository) FindPostedBetween(ctx context.Context, from, to time.Time) ([]*billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.withLines(ctx).
		Where("state = ? AND invoice_date >= ? AND invoice_date <= ?",
			string(billing.InvoiceStatePosted), from, to).
		Order("invoice_date ASC, created_at ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return toDomainInvoices(invoiceModels), nil
}

// Save creates or updates an invoice together with its lines
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	var model models.InvoiceModel
	model.FromDomain(invoice)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keptLineIDs := make([]uuid.UUID, len(model.Lines))
		for i := range model.Lines {
			keptLineIDs[i] = model.Lines[i].ID
		}
		stale := tx.Where("invoice_id = ?", invoice.GetID())
		if len(keptLineIDs) > 0 {
			stale = stale.Where("id NOT IN ?", keptLineIDs)
		}
		if err := stale.Delete(&models.InvoiceLineModel{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&model).Error
	})
}

func toDomainInvoices(invoiceModels []models.InvoiceModel) []*billing.Invoice {
	invoices := make([]*billing.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = invoiceModels[i].ToDomain()
	}
	return invoices
}
