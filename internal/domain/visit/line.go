package visit

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vetclinic/backend/internal/domain/clinic"
	"github.com/vetclinic/backend/internal/domain/shared"
)

// VisitLine is a billable item on a visit. The service type and combo
// flag are snapshotted from the service at the time the line is added,
// so the receipt stays stable if the service is reconfigured later.
type VisitLine struct {
	shared.BaseEntity
	VisitID     uuid.UUID
	ServiceID   uuid.UUID
	ServiceType clinic.ServiceType
	IsCombo     bool
	ProductID   uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Delivered   bool
}

// NewVisitLine creates a line from a service snapshot
func NewVisitLine(visitID uuid.UUID, service *clinic.Service, quantity, unitPrice decimal.Decimal) (*VisitLine, error) {
	if service == nil {
		return nil, shared.NewValidationError("Visit line requires a service")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Visit line quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("Visit line unit price cannot be negative")
	}

	return &VisitLine{
		BaseEntity:  shared.NewBaseEntity(),
		VisitID:     visitID,
		ServiceID:   service.GetID(),
		ServiceType: service.Type,
		IsCombo:     service.IsCombo,
		ProductID:   service.ProductID,
		Description: service.Name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}, nil
}

// newComponentLine creates a test line for a combo component product,
// priced at the component's own list price.
func newComponentLine(visitID, serviceID, productID uuid.UUID, description string, quantity, unitPrice decimal.Decimal) *VisitLine {
	return &VisitLine{
		BaseEntity:  shared.NewBaseEntity(),
		VisitID:     visitID,
		ServiceID:   serviceID,
		ServiceType: clinic.ServiceTypeTest,
		ProductID:   productID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}
}

// Subtotal is quantity times unit price
func (l *VisitLine) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// IsBillable reports whether the line qualifies for invoicing: it needs
// a product, a positive quantity and a positive price.
func (l *VisitLine) IsBillable() bool {
	return l.ProductID != uuid.Nil &&
		l.Quantity.GreaterThan(decimal.Zero) &&
		l.UnitPrice.GreaterThan(decimal.Zero)
}

// MarkDelivered flags the line as delivered from stock
func (l *VisitLine) MarkDelivered() {
	l.Delivered = true
	l.Touch()
}
