package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/infrastructure/persistence/models"
)

// GormSequenceGenerator allocates document numbers from per-code counter
// rows. The counter row is locked for update so concurrent callers each
// get a distinct number.
type GormSequenceGenerator struct {
	db *gorm.DB
}

// NewGormSequenceGenerator creates a new GormSequenceGenerator
func NewGormSequenceGenerator(db *gorm.DB) *GormSequenceGenerator {
	return &GormSequenceGenerator{db: db}
}

// Next returns the next document number for the sequence code
func (g *GormSequenceGenerator) Next(ctx context.Context, code string) (string, error) {
	var value int64
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.SequenceModel
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.SequenceModel{Code: code, NextValue: 1}).Error; err != nil {
			return err
		}
		q := tx.Where("code = ?", code)
		// SQLite has no row locks and serializes writers on its own
		if tx.Dialector.Name() != "sqlite" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&row).Error; err != nil {
			return err
		}
		value = row.NextValue
		return tx.Model(&models.SequenceModel{}).
			Where("code = ?", code).
			Update("next_value", row.NextValue+1).Error
	})
	if err != nil {
		return "", err
	}
	return formatSequence(code, value)
}

func formatSequence(code string, value int64) (string, error) {
	year := time.Now().Year()
	switch code {
	case shared.SequenceVisit:
		return fmt.Sprintf("VIS%05d", value), nil
	case shared.SequenceMicrochip:
		return fmt.Sprintf("HT%06d", value), nil
	case shared.SequenceInvoice:
		return fmt.Sprintf("INV/%d/%05d", year, value), nil
	case shared.SequencePayment:
		return fmt.Sprintf("PAY/%d/%05d", year, value), nil
	}
	return "", shared.NewDomainErrorf("SEQUENCE_ERROR", "Unknown sequence code '%s'", code)
}
