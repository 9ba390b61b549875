package visit

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vetclinic/backend/internal/domain/clinic"
	"github.com/vetclinic/backend/internal/domain/shared"
)

// State of a visit lifecycle
type State string

const (
	StateDraft     State = "draft"
	StateConfirmed State = "confirmed"
	StateDone      State = "done"
	StateCancel    State = "cancel"
)

// IsValid checks if the state is valid
func (s State) IsValid() bool {
	switch s {
	case StateDraft, StateConfirmed, StateDone, StateCancel:
		return true
	}
	return false
}

// IsTerminal reports whether normal operation can leave the state
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateCancel
}

// PaymentState derived from the visit's linked invoices
type PaymentState string

const (
	PaymentStateNotPaid PaymentState = "not_paid"
	PaymentStatePartial PaymentState = "partial"
	PaymentStatePaid    PaymentState = "paid"
)

// DerivePaymentState computes the payment state from the summed totals
// and residuals of the visit's linked invoices.
func DerivePaymentState(hasInvoices bool, totalAmount, residualAmount decimal.Decimal) PaymentState {
	if !hasInvoices {
		return PaymentStateNotPaid
	}
	if residualAmount.IsZero() && totalAmount.GreaterThan(decimal.Zero) {
		return PaymentStatePaid
	}
	if residualAmount.GreaterThan(decimal.Zero) && residualAmount.LessThan(totalAmount) {
		return PaymentStatePartial
	}
	return PaymentStateNotPaid
}

// PaymentMethod used to settle a visit
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodBank   PaymentMethod = "bank"
	PaymentMethodOnline PaymentMethod = "online"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCash || m == PaymentMethodBank || m == PaymentMethodOnline
}

// Visit is the central aggregate: one animal's appointment with its
// billable lines, charges, discounts and payment tracking.
//
// While the state is confirmed or done, only notes and the latest
// payment amount may be written. Every other mutation is rejected with
// a breakdown of the attempted fields. Totals are recomputed explicitly
// by the mutating operations, never behind the caller's back.
type Visit struct {
	shared.BaseAggregateRoot
	Reference           string
	Date                time.Time
	AnimalID            uuid.UUID
	OwnerID             uuid.UUID
	DoctorID            *uuid.UUID
	BranchID            *uuid.UUID
	Notes               string
	TreatmentCharge     decimal.Decimal
	DiscountPercent     decimal.Decimal
	DiscountFixed       decimal.Decimal
	Subtotal            decimal.Decimal
	TotalAmount         decimal.Decimal
	PaymentMethod       PaymentMethod
	Lines               []*VisitLine
	InvoiceIDs          []uuid.UUID
	PaymentState        PaymentState
	State               State
	LatestPaymentAmount decimal.Decimal
	Delivered           bool
}

// NewVisit creates a draft visit with its clinic-assigned reference
func NewVisit(reference string, animalID, ownerID uuid.UUID) (*Visit, error) {
	if reference == "" {
		return nil, shared.NewValidationError("Visit reference cannot be empty")
	}
	if animalID == uuid.Nil {
		return nil, shared.NewValidationError("Visit requires an animal")
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewValidationError("Visit requires an owner")
	}

	v := &Visit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Reference:         reference,
		Date:              time.Now(),
		AnimalID:          animalID,
		OwnerID:           ownerID,
		TreatmentCharge:   decimal.Zero,
		DiscountPercent:   decimal.Zero,
		DiscountFixed:     decimal.Zero,
		Subtotal:          decimal.Zero,
		TotalAmount:       decimal.Zero,
		PaymentMethod:     PaymentMethodCash,
		PaymentState:      PaymentStateNotPaid,
		State:             StateDraft,
	}
	v.AddDomainEvent(NewVisitCreatedEvent(v.ID, reference, animalID, ownerID))
	return v, nil
}

// ensureEditable rejects the write unless the visit is still a draft
func (v *Visit) ensureEditable(fields ...string) error {
	if v.State == StateDraft {
		return nil
	}
	return NewFieldMutationError(v.Reference, v.State, fields)
}

// RecomputeTotals rederives subtotal and total from the current lines,
// treatment charge and discount. Lines with zero quantity or price do
// not contribute. Negative totals are kept as-is, never clamped.
func (v *Visit) RecomputeTotals() {
	subtotal := decimal.Zero
	for _, line := range v.Lines {
		if line.Quantity.GreaterThan(decimal.Zero) && line.UnitPrice.GreaterThan(decimal.Zero) {
			subtotal = subtotal.Add(line.Subtotal())
		}
	}
	v.Subtotal = subtotal

	total := subtotal.Add(v.TreatmentCharge)
	if v.DiscountPercent.GreaterThan(decimal.Zero) {
		total = total.Sub(total.Mul(v.DiscountPercent).Div(decimal.NewFromInt(100)))
	} else if v.DiscountFixed.GreaterThan(decimal.Zero) {
		total = total.Sub(v.DiscountFixed)
	}
	v.TotalAmount = total
}

// AddLine appends a billable line from a service snapshot
func (v *Visit) AddLine(service *clinic.Service, quantity, unitPrice decimal.Decimal) (*VisitLine, error) {
	if err := v.ensureEditable(FieldLines); err != nil {
		return nil, err
	}
	line, err := NewVisitLine(v.ID, service, quantity, unitPrice)
	if err != nil {
		return nil, err
	}
	v.Lines = append(v.Lines, line)
	v.RecomputeTotals()
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
	return line, nil
}

// AddComponentLine appends a test line for a combo component product.
// Used when a combo selection is resumed; bypasses the draft-only guard
// because the selection happens as part of invoice generation.
func (v *Visit) AddComponentLine(serviceID, productID uuid.UUID, description string, quantity, unitPrice decimal.Decimal) (*VisitLine, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Component quantity must be positive")
	}
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("Component requires a product")
	}
	line := newComponentLine(v.ID, serviceID, productID, description, quantity, unitPrice)
	v.Lines = append(v.Lines, line)
	v.RecomputeTotals()
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
	return line, nil
}

// RemoveLine deletes a line by its ID
func (v *Visit) RemoveLine(lineID uuid.UUID) error {
	if err := v.ensureEditable(FieldLines); err != nil {
		return err
	}
	for i, line := range v.Lines {
		if line.GetID() == lineID {
			v.Lines = append(v.Lines[:i], v.Lines[i+1:]...)
			v.RecomputeTotals()
			v.UpdatedAt = time.Now()
			v.IncrementVersion()
			return nil
		}
	}
	return shared.ErrNotFound
}

// UpdateLine changes quantity and unit price of an existing line
func (v *Visit) UpdateLine(lineID uuid.UUID, quantity, unitPrice decimal.Decimal) error {
	if err := v.ensureEditable(FieldLines); err != nil {
		return err
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("Visit line quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewValidationError("Visit line unit price cannot be negative")
	}
	for _, line := range v.Lines {
		if line.GetID() == lineID {
			line.Quantity = quantity
			line.UnitPrice = unitPrice
			line.Touch()
			v.RecomputeTotals()
			v.UpdatedAt = time.Now()
			v.IncrementVersion()
			return nil
		}
	}
	return shared.ErrNotFound
}

// SetTreatmentCharge sets the flat treatment charge
func (v *Visit) SetTreatmentCharge(charge decimal.Decimal) error {
	if err := v.ensureEditable(FieldTreatmentCharge); err != nil {
		return err
	}
	if charge.IsNegative() {
		return shared.NewValidationError("Treatment charge cannot be negative")
	}
	v.TreatmentCharge = charge
	v.RecomputeTotals()
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
	return nil
}

// SetDiscountPercent sets the percentage discount. It cannot be
// combined with a fixed discount.
func (v *Visit) SetDiscountPercent(percent decimal.Decimal) error {
	if err := v.ensureEditable(FieldDiscountPercent); err != nil {
		return err
	}
	if percent.IsNegative() {
		return shared.NewValidationError("Discount percent cannot be negative")
	}
	if percent.GreaterThan(decimal.Zero) && v.DiscountFixed.GreaterThan(decimal.Zero) {
		return shared.NewValidationError("You cannot use both Discount (%) and Discount (Fixed) at the same time. Please use only one.")
	}
	v.DiscountPercent = percent
	v.RecomputeTotals()
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
	return nil
}

// SetDiscountFixed sets the flat discount amount. It cannot be combined
// with a percentage discount.
func (v *Visit) SetDiscountFixed(amount decimal.Decimal) error {
	if err := v.ensureEditable(FieldDiscountFixed); err != nil {
		return err
	}
	if amount.IsNegative() {
		return shared.NewValidationError("Discount amount cannot be negative")
	}
	if amount.GreaterThan(decimal.Zero) && v.DiscountPercent.GreaterThan(decimal.Zero) {
		return shared.NewValidationError("You cannot use both Discount (%) and Discount (Fixed) at the same time. Please use only one.")
	}
	v.DiscountFixed = amount
	v.RecomputeTotals()
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
	return nil
}

// SetNotes is allowed in every state
func (v *Visit) SetNotes(notes string) {
	v.Notes = notes
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
}

// AssignDoctor sets the attending doctor and the visit's branch
func (v *Visit) AssignDoctor(doctorID, branchID uuid.UUID) error {
	if err := v.ensureEditable(FieldDoctor); err != nil {
		return err
	}
	if doctorID == uuid.Nil {
		return shared.NewValidationError("Doctor ID cannot be empty")
	}
	v.DoctorID = &doctorID
	if branchID != uuid.Nil {
		v.BranchID = &branchID
	}
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
	return nil
}

// SetPaymentMethod selects how the visit will be settled
func (v *Visit) SetPaymentMethod(method PaymentMethod) error {
	if !method.IsValid() {
		return shared.NewValidationError("Payment method must be one of: cash, bank, online")
	}
	if err := v.ensureEditable(FieldPaymentMethod); err != nil {
		return err
	}
	v.PaymentMethod = method
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
	return nil
}

// RecordPayment stores the latest payment amount and method. Allowed in
// every state: payment history must survive even when the visit is
// locked for edits.
func (v *Visit) RecordPayment(amount decimal.Decimal, method PaymentMethod) error {
	if !method.IsValid() {
		return shared.NewValidationError("Payment method must be one of: cash, bank, online")
	}
	v.LatestPaymentAmount = amount
	v.PaymentMethod = method
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
	v.AddDomainEvent(NewVisitPaymentRecordedEvent(v.ID, v.Reference, amount, string(method)))
	return nil
}

// Confirm moves a draft visit to confirmed
func (v *Visit) Confirm() error {
	switch v.State {
	case StateDraft:
		v.setState(StateConfirmed)
		v.AddDomainEvent(NewVisitConfirmedEvent(v.ID, v.Reference))
		return nil
	case StateConfirmed:
		return nil
	default:
		return shared.NewDomainErrorf(shared.CodeStateTransition,
			"Cannot confirm visit %s in %s state", v.Reference, v.State)
	}
}

// Cancel marks the visit cancelled. Only draft and confirmed visits can
// be cancelled, and not while a posted invoice is still linked.
func (v *Visit) Cancel(hasPostedInvoices bool) error {
	if v.State != StateDraft && v.State != StateConfirmed {
		return shared.NewDomainErrorf(shared.CodeStateTransition,
			"Cannot cancel visit %s in %s state", v.Reference, v.State)
	}
	if hasPostedInvoices {
		return shared.NewDomainError(shared.CodeStateTransition,
			"Cannot cancel a visit with posted invoices. Please cancel the invoices first.")
	}
	v.setState(StateCancel)
	v.AddDomainEvent(NewVisitCancelledEvent(v.ID, v.Reference))
	return nil
}

// LinkInvoice records an invoice reference. Linking the first invoice
// confirms a draft visit.
func (v *Visit) LinkInvoice(invoiceID uuid.UUID) error {
	if invoiceID == uuid.Nil {
		return shared.NewValidationError("Invoice ID cannot be empty")
	}
	if v.State == StateCancel {
		return shared.NewDomainErrorf(shared.CodeStateTransition,
			"Cannot link an invoice to cancelled visit %s", v.Reference)
	}
	for _, id := range v.InvoiceIDs {
		if id == invoiceID {
			return nil
		}
	}
	v.InvoiceIDs = append(v.InvoiceIDs, invoiceID)
	if v.State == StateDraft {
		v.setState(StateConfirmed)
	}
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
	return nil
}

// HasInvoice reports whether any invoice is linked
func (v *Visit) HasInvoice() bool {
	return len(v.InvoiceIDs) > 0
}

// SyncStateWithPayments records the derived payment state and moves the
// visit state to match it. Cancelled visits stay cancelled.
func (v *Visit) SyncStateWithPayments(paymentState PaymentState) {
	v.PaymentState = paymentState
	if v.State == StateCancel {
		return
	}
	newState := StateDraft
	if paymentState == PaymentStatePaid {
		newState = StateDone
	} else if v.HasInvoice() {
		newState = StateConfirmed
	}
	if newState != v.State {
		v.setState(newState)
	}
}

// setState is the administrative write path used by the state machine
// itself; it skips the field mutation guard.
func (v *Visit) setState(newState State) {
	old := v.State
	v.State = newState
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
	if old != newState {
		v.AddDomainEvent(NewVisitStateChangedEvent(v.ID, v.Reference, string(old), string(newState)))
	}
}

// ServiceLines returns the lines classified as services
func (v *Visit) ServiceLines() []*VisitLine {
	return v.linesOfType(clinic.ServiceTypeService)
}

// VaccineLines returns the lines classified as vaccines
func (v *Visit) VaccineLines() []*VisitLine {
	return v.linesOfType(clinic.ServiceTypeVaccine)
}

// TestLines returns the lines classified as tests
func (v *Visit) TestLines() []*VisitLine {
	return v.linesOfType(clinic.ServiceTypeTest)
}

func (v *Visit) linesOfType(t clinic.ServiceType) []*VisitLine {
	var out []*VisitLine
	for _, line := range v.Lines {
		if line.ServiceType == t {
			out = append(out, line)
		}
	}
	return out
}

// ReceiptLines returns the lines that appear on the printed receipt
func (v *Visit) ReceiptLines() []*VisitLine {
	var out []*VisitLine
	for _, line := range v.Lines {
		if line.IsBillable() {
			out = append(out, line)
		}
	}
	return out
}

// PendingComboLines returns billable test lines whose service is a
// combo. These block invoicing until their components are selected.
func (v *Visit) PendingComboLines() []*VisitLine {
	var out []*VisitLine
	for _, line := range v.TestLines() {
		if line.IsCombo && line.IsBillable() {
			out = append(out, line)
		}
	}
	return out
}

// DeliverableLines returns lines with a product and positive quantity
// that have not been delivered yet.
func (v *Visit) DeliverableLines() []*VisitLine {
	var out []*VisitLine
	for _, line := range v.Lines {
		if line.ProductID != uuid.Nil && line.Quantity.GreaterThan(decimal.Zero) && !line.Delivered {
			out = append(out, line)
		}
	}
	return out
}

// MarkDelivered flags the whole visit as delivered after all lines went out
func (v *Visit) MarkDelivered() {
	v.Delivered = true
	v.UpdatedAt = time.Now()
	v.IncrementVersion()
}
