package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
)

// PaymentAllocation records how much of a payment landed on one invoice
type PaymentAllocation struct {
	InvoiceID uuid.UUID         `json:"invoice_id"`
	Amount    valueobject.Money `json:"amount"`
}

// Payment is money received from a partner and allocated across their
// outstanding invoices oldest-first. When the structured registration
// path fails, the payment is recorded through a manual balanced entry
// instead; Reconciled stays false if automatic matching also failed.
type Payment struct {
	shared.BaseAggregateRoot
	Number      string
	PartnerID   uuid.UUID
	VisitID     *uuid.UUID
	JournalID   uuid.UUID
	Amount      valueobject.Money
	Allocations []PaymentAllocation
	Manual      bool
	Reconciled  bool
	PaidAt      time.Time
}

// NewPayment creates a payment record
func NewPayment(number string, partnerID, journalID uuid.UUID, amount valueobject.Money) (*Payment, error) {
	if number == "" {
		return nil, shared.NewValidationError("Payment number cannot be empty")
	}
	if partnerID == uuid.Nil {
		return nil, shared.NewValidationError("Payment requires a partner")
	}
	if journalID == uuid.Nil {
		return nil, shared.NewValidationError("Payment requires a journal")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Payment amount must be greater than zero.")
	}
	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		PartnerID:         partnerID,
		JournalID:         journalID,
		Amount:            amount,
		Reconciled:        true,
		PaidAt:            time.Now(),
	}
	return p, nil
}

// LinkVisit ties the payment to the visit it was taken for
func (p *Payment) LinkVisit(visitID uuid.UUID) {
	p.VisitID = &visitID
}

// RecordAllocations stores the per-invoice split
func (p *Payment) RecordAllocations(allocations []PaymentAllocation) {
	p.Allocations = allocations
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// MarkManual flags the payment as recorded through the fallback entry
// path; reconciled reports whether automatic matching succeeded.
func (p *Payment) MarkManual(reconciled bool) {
	p.Manual = true
	p.Reconciled = reconciled
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// AllocatedTotal sums the recorded allocations
func (p *Payment) AllocatedTotal() valueobject.Money {
	total := valueobject.ZeroBDT()
	for _, a := range p.Allocations {
		total = total.MustAdd(a.Amount)
	}
	return total
}
