package billing

import (
	"github.com/google/uuid"
	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
)

const (
	EventInvoicePosted     = "billing.invoice.posted"
	EventPaymentRegistered = "billing.payment.registered"
)

// InvoicePostedEvent is raised when an invoice is finalized
type InvoicePostedEvent struct {
	shared.BaseDomainEvent
	Number    string            `json:"number"`
	PartnerID uuid.UUID         `json:"partner_id"`
	Amount    valueobject.Money `json:"amount"`
}

// NewInvoicePostedEvent creates a new invoice posted event
func NewInvoicePostedEvent(invoiceID uuid.UUID, number string, partnerID uuid.UUID, amount valueobject.Money) *InvoicePostedEvent {
	return &InvoicePostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventInvoicePosted, "Invoice", invoiceID),
		Number:          number,
		PartnerID:       partnerID,
		Amount:          amount,
	}
}

// PaymentRegisteredEvent is raised when a payment is recorded
type PaymentRegisteredEvent struct {
	shared.BaseDomainEvent
	Number    string            `json:"number"`
	PartnerID uuid.UUID         `json:"partner_id"`
	Amount    valueobject.Money `json:"amount"`
	Manual    bool              `json:"manual"`
}

// NewPaymentRegisteredEvent creates a new payment registered event
func NewPaymentRegisteredEvent(paymentID uuid.UUID, number string, partnerID uuid.UUID, amount valueobject.Money, manual bool) *PaymentRegisteredEvent {
	return &PaymentRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventPaymentRegistered, "Payment", paymentID),
		Number:          number,
		PartnerID:       partnerID,
		Amount:          amount,
		Manual:          manual,
	}
}
