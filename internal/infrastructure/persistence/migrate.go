package persistence

import (
	"gorm.io/gorm"

	"github.com/vetclinic/backend/internal/infrastructure/persistence/models"
)

// AutoMigrate creates or updates the schema for every persistence model.
// Production deployments run versioned SQL migrations instead; this is
// for development databases and repository tests.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.BranchModel{},
		&models.UserModel{},
		&models.UserBranchModel{},
		&models.OwnerModel{},
		&models.AnimalModel{},
		&models.DoctorModel{},
		&models.ProductCategoryModel{},
		&models.ProductModel{},
		&models.ServiceModel{},
		&models.ServiceComponentModel{},
		&models.VisitModel{},
		&models.VisitLineModel{},
		&models.VisitInvoiceModel{},
		&models.AccountModel{},
		&models.JournalModel{},
		&models.BillingPartnerModel{},
		&models.InvoiceModel{},
		&models.InvoiceLineModel{},
		&models.PaymentModel{},
		&models.PaymentAllocationModel{},
		&models.JournalEntryModel{},
		&models.JournalEntryLineModel{},
		&models.StockMoveModel{},
		&models.SequenceModel{},
	)
}
