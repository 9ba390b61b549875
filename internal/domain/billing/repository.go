package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByVisit(ctx context.Context, visitID uuid.UUID) ([]*Invoice, error)
	// FindOutstandingByPartner returns posted unpaid/partial invoices,
	// oldest invoice date first, ties broken by creation order
	FindOutstandingByPartner(ctx context.Context, partnerID uuid.UUID) ([]*Invoice, error)
	// FindPostedBetween returns posted invoices in the date window
	FindPostedBetween(ctx context.Context, from, to time.Time) ([]*Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByVisit(ctx context.Context, visitID uuid.UUID) ([]*Payment, error)
	Save(ctx context.Context, payment *Payment) error
}

// BillingPartnerRepository defines the interface for partner persistence
type BillingPartnerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BillingPartner, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*BillingPartner, error)
	Save(ctx context.Context, partner *BillingPartner) error
}

// AccountRepository defines the interface for ledger account lookup
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	// FirstByType returns the first active account of the given type
	FirstByType(ctx context.Context, accountType AccountType) (*Account, error)
	Save(ctx context.Context, account *Account) error
}

// JournalRepository defines the interface for journal lookup
type JournalRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Journal, error)
	FirstByType(ctx context.Context, journalType JournalType) (*Journal, error)
	Save(ctx context.Context, journal *Journal) error
}
