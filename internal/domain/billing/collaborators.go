package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
)

// ManualEntryLine is one side of a balanced fallback entry
type ManualEntryLine struct {
	Description string
	AccountID   uuid.UUID
	PartnerID   uuid.UUID
	Debit       valueobject.Money
	Credit      valueobject.Money
}

// ManualEntry is a balanced debit/credit pair posted when the
// structured payment registration path fails.
type ManualEntry struct {
	Reference string
	JournalID uuid.UUID
	InvoiceID uuid.UUID
	Lines     []ManualEntryLine
}

// Ledger is the accounting collaborator. Registration either succeeds
// as a structured payment or the caller falls back to a manual entry
// plus reconciliation.
type Ledger interface {
	// RegisterPayment applies a structured payment of amount against the invoice
	RegisterPayment(ctx context.Context, invoice *Invoice, amount valueobject.Money, journal *Journal, partner *BillingPartner) error
	// PostManualEntry records a balanced fallback entry
	PostManualEntry(ctx context.Context, entry ManualEntry) error
	// Reconcile matches a manual entry against the invoice's receivable line
	Reconcile(ctx context.Context, invoiceID uuid.UUID, entryReference string) error
}

// DeliveryRequest asks for one product to be shipped out of stock
type DeliveryRequest struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	// LotName is set for lot-tracked products
	LotName string
	Origin  string
}

// StockDeliverer hands billed products out of inventory. Failures after
// the invoice is posted are logged, never propagated.
type StockDeliverer interface {
	Deliver(ctx context.Context, requests []DeliveryRequest) error
}

// ReceiptLine is one row of the printable receipt
type ReceiptLine struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// ReceiptData feeds the receipt template
type ReceiptData struct {
	VisitReference  string
	AnimalName      string
	OwnerName       string
	OwnerPhone      string
	DoctorName      string
	Date            string
	Lines           []ReceiptLine
	Subtotal        decimal.Decimal
	TreatmentCharge decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountFixed   decimal.Decimal
	TotalAmount     decimal.Decimal
	PaidAmount      decimal.Decimal
	PaymentMethod   string
}

// ReceiptRenderer renders a visit receipt document
type ReceiptRenderer interface {
	RenderVisitReceipt(ctx context.Context, data ReceiptData) ([]byte, error)
}
