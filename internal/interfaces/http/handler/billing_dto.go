package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vetclinic/backend/internal/domain/billing"
)

// InvoiceLineResponse is the API view of an invoice line
type InvoiceLineResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       *uuid.UUID      `json:"product_id,omitempty"`
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Amount          decimal.Decimal `json:"amount"`
}

// InvoiceResponse is the API view of an invoice
type InvoiceResponse struct {
	ID             uuid.UUID             `json:"id"`
	Number         string                `json:"number"`
	PartnerID      uuid.UUID             `json:"partner_id"`
	VisitID        *uuid.UUID            `json:"visit_id,omitempty"`
	BranchID       *uuid.UUID            `json:"branch_id,omitempty"`
	InvoiceDate    time.Time             `json:"invoice_date"`
	Origin         string                `json:"origin,omitempty"`
	Lines          []InvoiceLineResponse `json:"lines"`
	AmountTotal    decimal.Decimal       `json:"amount_total"`
	AmountPaid     decimal.Decimal       `json:"amount_paid"`
	AmountResidual decimal.Decimal       `json:"amount_residual"`
	State          string                `json:"state"`
	PaymentState   string                `json:"payment_state"`
}

// InvoiceOutcomeResponse is the tagged result of invoice generation
type InvoiceOutcomeResponse struct {
	Status    string                  `json:"status"`
	Invoice   *InvoiceResponse        `json:"invoice,omitempty"`
	Selection *billing.ComboSelection `json:"selection,omitempty"`
}

// PaymentAllocationResponse is one invoice allocation of a payment
type PaymentAllocationResponse struct {
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// PaymentResponse is the API view of a payment
type PaymentResponse struct {
	ID          uuid.UUID                   `json:"id"`
	Number      string                      `json:"number"`
	PartnerID   uuid.UUID                   `json:"partner_id"`
	VisitID     *uuid.UUID                  `json:"visit_id,omitempty"`
	JournalID   uuid.UUID                   `json:"journal_id"`
	Amount      decimal.Decimal             `json:"amount"`
	Allocations []PaymentAllocationResponse `json:"allocations"`
	Manual      bool                        `json:"manual"`
	Reconciled  bool                        `json:"reconciled"`
	PaidAt      time.Time                   `json:"paid_at"`
}

// OwnerBalanceResponse carries an owner's unpaid invoice balance
type OwnerBalanceResponse struct {
	OwnerID uuid.UUID       `json:"owner_id"`
	Balance decimal.Decimal `json:"balance"`
}

func toInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, 0, len(inv.Lines))
	for _, line := range inv.Lines {
		lines = append(lines, InvoiceLineResponse{
			ID:              line.GetID(),
			ProductID:       line.ProductID,
			Description:     line.Description,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
			Amount:          line.Amount(),
		})
	}
	return InvoiceResponse{
		ID:             inv.GetID(),
		Number:         inv.Number,
		PartnerID:      inv.PartnerID,
		VisitID:        inv.VisitID,
		BranchID:       inv.BranchID,
		InvoiceDate:    inv.InvoiceDate,
		Origin:         inv.Origin,
		Lines:          lines,
		AmountTotal:    inv.AmountTotal.Amount(),
		AmountPaid:     inv.AmountPaid().Amount(),
		AmountResidual: inv.AmountResidual.Amount(),
		State:          string(inv.State),
		PaymentState:   string(inv.PaymentState),
	}
}

func toInvoiceResponsePtr(inv *billing.Invoice) *InvoiceResponse {
	if inv == nil {
		return nil
	}
	resp := toInvoiceResponse(inv)
	return &resp
}

func toPaymentResponse(p *billing.Payment) PaymentResponse {
	allocations := make([]PaymentAllocationResponse, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		allocations = append(allocations, PaymentAllocationResponse{
			InvoiceID: a.InvoiceID,
			Amount:    a.Amount.Amount(),
		})
	}
	return PaymentResponse{
		ID:          p.GetID(),
		Number:      p.Number,
		PartnerID:   p.PartnerID,
		VisitID:     p.VisitID,
		JournalID:   p.JournalID,
		Amount:      p.Amount.Amount(),
		Allocations: allocations,
		Manual:      p.Manual,
		Reconciled:  p.Reconciled,
		PaidAt:      p.PaidAt,
	}
}
