package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vetclinic/backend/internal/domain/billing"
	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
	"github.com/vetclinic/backend/internal/infrastructure/persistence/models"
)

// GormLedger implements the accounting collaborator by posting balanced
// journal entry rows. A structured registration debits the journal's
// cash account and credits the partner's receivable; manual fallback
// entries are stored verbatim and reconciled by reference.
type GormLedger struct {
	db       *gorm.DB
	accounts billing.AccountRepository
}

// NewGormLedger creates a new GormLedger
func NewGormLedger(db *gorm.DB, accounts billing.AccountRepository) *GormLedger {
	return &GormLedger{db: db, accounts: accounts}
}

// RegisterPayment posts a structured payment entry against the invoice
func (l *GormLedger) RegisterPayment(ctx context.Context, invoice *billing.Invoice, amount valueobject.Money, journal *billing.Journal, partner *billing.BillingPartner) error {
	if journal.DefaultAccountID == nil {
		return shared.NewConfigurationError("Selected journal has no default account configured.")
	}
	receivableID, err := l.receivableAccountID(ctx, partner)
	if err != nil {
		return err
	}
	partnerID := partner.GetID()
	invoiceID := invoice.GetID()
	entry := models.JournalEntryModel{
		Reference: fmt.Sprintf("Payment for Invoice %s", invoice.Number),
		JournalID: journal.GetID(),
		InvoiceID: &invoiceID,
		PostedAt:  time.Now(),
		Lines: []models.JournalEntryLineModel{
			{
				AccountID:   *journal.DefaultAccountID,
				PartnerID:   &partnerID,
				Description: invoice.Number,
				Debit:       amount.Amount(),
			},
			{
				AccountID:   receivableID,
				PartnerID:   &partnerID,
				Description: invoice.Number,
				Credit:      amount.Amount(),
			},
		},
	}
	entry.ID = uuid.New()
	entry.Reconciled = true
	for i := range entry.Lines {
		entry.Lines[i].ID = uuid.New()
		entry.Lines[i].EntryID = entry.ID
	}
	return l.db.WithContext(ctx).Create(&entry).Error
}

// PostManualEntry records a balanced fallback entry
func (l *GormLedger) PostManualEntry(ctx context.Context, manual billing.ManualEntry) error {
	debit := sumSide(manual, true)
	credit := sumSide(manual, false)
	if !debit.Equals(credit) {
		return shared.NewDomainError(shared.CodeValidation, "Manual entry debits and credits must balance")
	}
	invoiceID := manual.InvoiceID
	entry := models.JournalEntryModel{
		Reference: manual.Reference,
		JournalID: manual.JournalID,
		InvoiceID: &invoiceID,
		Manual:    true,
		PostedAt:  time.Now(),
		Lines:     make([]models.JournalEntryLineModel, len(manual.Lines)),
	}
	entry.ID = uuid.New()
	for i, line := range manual.Lines {
		partnerID := line.PartnerID
		entry.Lines[i] = models.JournalEntryLineModel{
			EntryID:     entry.ID,
			AccountID:   line.AccountID,
			PartnerID:   &partnerID,
			Description: line.Description,
			Debit:       line.Debit.Amount(),
			Credit:      line.Credit.Amount(),
		}
		entry.Lines[i].ID = uuid.New()
	}
	return l.db.WithContext(ctx).Create(&entry).Error
}

// Reconcile matches a posted manual entry against the invoice
func (l *GormLedger) Reconcile(ctx context.Context, invoiceID uuid.UUID, entryReference string) error {
	result := l.db.WithContext(ctx).
		Model(&models.JournalEntryModel{}).
		Where("invoice_id = ? AND reference = ?", invoiceID, entryReference).
		Update("reconciled", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainErrorf(shared.CodeReconciliation, "No ledger entry '%s' found for reconciliation", entryReference)
	}
	return nil
}

func (l *GormLedger) receivableAccountID(ctx context.Context, partner *billing.BillingPartner) (uuid.UUID, error) {
	if partner.ReceivableAccountID != nil {
		return *partner.ReceivableAccountID, nil
	}
	account, err := l.accounts.FirstByType(ctx, billing.AccountTypeReceivable)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return uuid.Nil, shared.NewConfigurationError("No receivable account configured.")
		}
		return uuid.Nil, err
	}
	return account.GetID(), nil
}

func sumSide(manual billing.ManualEntry, debit bool) valueobject.Money {
	total := valueobject.ZeroBDT()
	for _, line := range manual.Lines {
		if debit {
			total = total.MustAdd(line.Debit)
		} else {
			total = total.MustAdd(line.Credit)
		}
	}
	return total
}
