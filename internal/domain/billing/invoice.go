package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
)

// InvoiceState of the ledger document
type InvoiceState string

const (
	InvoiceStateDraft  InvoiceState = "draft"
	InvoiceStatePosted InvoiceState = "posted"
	InvoiceStateCancel InvoiceState = "cancel"
)

// InvoicePaymentState derived from the residual
type InvoicePaymentState string

const (
	InvoiceNotPaid InvoicePaymentState = "not_paid"
	InvoicePartial InvoicePaymentState = "partial"
	InvoicePaid    InvoicePaymentState = "paid"
)

// InvoiceLine is one billed position. A discount percent on the line is
// the visit's percent discount carried through; fixed discounts become
// their own negative-amount line instead.
type InvoiceLine struct {
	shared.BaseEntity
	InvoiceID       uuid.UUID
	ProductID       *uuid.UUID
	Description     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	AccountID       uuid.UUID
}

// NewInvoiceLine creates an invoice line
func NewInvoiceLine(productID *uuid.UUID, description string, quantity, unitPrice, discountPercent decimal.Decimal, accountID uuid.UUID) (*InvoiceLine, error) {
	if description == "" {
		return nil, shared.NewValidationError("Invoice line description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Invoice line quantity must be positive")
	}
	if accountID == uuid.Nil {
		return nil, shared.NewConfigurationError("Invoice line requires an account")
	}
	return &InvoiceLine{
		BaseEntity:      shared.NewBaseEntity(),
		ProductID:       productID,
		Description:     description,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		DiscountPercent: discountPercent,
		AccountID:       accountID,
	}, nil
}

// Amount is the line's contribution to the invoice total
func (l *InvoiceLine) Amount() decimal.Decimal {
	amount := l.Quantity.Mul(l.UnitPrice)
	if l.DiscountPercent.GreaterThan(decimal.Zero) {
		amount = amount.Sub(amount.Mul(l.DiscountPercent).Div(decimal.NewFromInt(100)))
	}
	return amount
}

// Invoice is a customer invoice generated from a visit's billable lines.
// Once posted it is immutable except for payment application and cancel.
type Invoice struct {
	shared.BaseAggregateRoot
	Number         string
	PartnerID      uuid.UUID
	VisitID        *uuid.UUID
	BranchID       *uuid.UUID
	InvoiceDate    time.Time
	Origin         string
	Lines          []*InvoiceLine
	AmountTotal    valueobject.Money
	AmountResidual valueobject.Money
	State          InvoiceState
	PaymentState   InvoicePaymentState
}

// NewInvoice creates a draft invoice for a partner
func NewInvoice(number string, partnerID uuid.UUID, invoiceDate time.Time, origin string) (*Invoice, error) {
	if number == "" {
		return nil, shared.NewValidationError("Invoice number cannot be empty")
	}
	if partnerID == uuid.Nil {
		return nil, shared.NewValidationError("Invoice requires a partner")
	}
	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		PartnerID:         partnerID,
		InvoiceDate:       invoiceDate,
		Origin:            origin,
		AmountTotal:       valueobject.ZeroBDT(),
		AmountResidual:    valueobject.ZeroBDT(),
		State:             InvoiceStateDraft,
		PaymentState:      InvoiceNotPaid,
	}, nil
}

// LinkVisit records the originating visit
func (inv *Invoice) LinkVisit(visitID uuid.UUID) {
	inv.VisitID = &visitID
}

// SetBranch tags the invoice with the branch it belongs to
func (inv *Invoice) SetBranch(branchID uuid.UUID) {
	if branchID != uuid.Nil {
		inv.BranchID = &branchID
	}
}

// AddLine appends a line to a draft invoice and recomputes the total
func (inv *Invoice) AddLine(line *InvoiceLine) error {
	if inv.State != InvoiceStateDraft {
		return shared.NewDomainErrorf(shared.CodeStateTransition,
			"Cannot add lines to invoice %s in %s state", inv.Number, inv.State)
	}
	line.InvoiceID = inv.ID
	inv.Lines = append(inv.Lines, line)
	inv.recomputeTotal()
	return nil
}

func (inv *Invoice) recomputeTotal() {
	total := decimal.Zero
	for _, line := range inv.Lines {
		total = total.Add(line.Amount())
	}
	inv.AmountTotal = valueobject.NewMoneyBDT(total)
	if inv.State == InvoiceStateDraft {
		inv.AmountResidual = inv.AmountTotal
	}
}

// Post finalizes the invoice. A posted invoice carries its full amount
// as residual until payments are applied.
func (inv *Invoice) Post() error {
	if inv.State != InvoiceStateDraft {
		return shared.NewDomainErrorf(shared.CodeStateTransition,
			"Cannot post invoice %s in %s state", inv.Number, inv.State)
	}
	if len(inv.Lines) == 0 {
		return shared.NewValidationError("Cannot post an invoice without lines")
	}
	inv.State = InvoiceStatePosted
	inv.AmountResidual = inv.AmountTotal
	inv.refreshPaymentState()
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoicePostedEvent(inv.ID, inv.Number, inv.PartnerID, inv.AmountTotal))
	return nil
}

// Cancel voids the invoice. Paid invoices cannot be cancelled.
func (inv *Invoice) Cancel() error {
	if inv.State == InvoiceStateCancel {
		return nil
	}
	if inv.PaymentState == InvoicePaid {
		return shared.NewDomainErrorf(shared.CodeStateTransition,
			"Cannot cancel paid invoice %s", inv.Number)
	}
	inv.State = InvoiceStateCancel
	inv.AmountResidual = valueobject.ZeroBDT()
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// ApplyPayment reduces the residual by the given amount and rederives
// the payment state. The amount must not exceed the residual.
func (inv *Invoice) ApplyPayment(amount valueobject.Money) error {
	if inv.State != InvoiceStatePosted {
		return shared.NewDomainErrorf(shared.CodeStateTransition,
			"Cannot apply a payment to invoice %s in %s state", inv.Number, inv.State)
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("Payment amount must be greater than zero.")
	}
	if amount.Amount().GreaterThan(inv.AmountResidual.Amount()) {
		return shared.NewDomainErrorf(shared.CodeOverpayment,
			"Payment %s exceeds residual %s on invoice %s", amount, inv.AmountResidual, inv.Number)
	}
	inv.AmountResidual = inv.AmountResidual.MustSubtract(amount)
	inv.refreshPaymentState()
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

func (inv *Invoice) refreshPaymentState() {
	switch {
	case inv.AmountResidual.IsZero() && inv.AmountTotal.IsPositive():
		inv.PaymentState = InvoicePaid
	case inv.AmountResidual.Amount().LessThan(inv.AmountTotal.Amount()) && inv.AmountResidual.IsPositive():
		inv.PaymentState = InvoicePartial
	default:
		inv.PaymentState = InvoiceNotPaid
	}
}

// AmountPaid is the portion of the total already settled
func (inv *Invoice) AmountPaid() valueobject.Money {
	return inv.AmountTotal.MustSubtract(inv.AmountResidual)
}

// IsOutstanding reports whether the invoice still carries a residual
func (inv *Invoice) IsOutstanding() bool {
	return inv.State == InvoiceStatePosted &&
		(inv.PaymentState == InvoiceNotPaid || inv.PaymentState == InvoicePartial)
}

// BranchRef exposes the branch for access filtering
func (inv *Invoice) BranchRef() *uuid.UUID {
	return inv.BranchID
}
