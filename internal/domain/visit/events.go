package visit

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vetclinic/backend/internal/domain/shared"
)

const (
	EventVisitCreated         = "visit.created"
	EventVisitConfirmed       = "visit.confirmed"
	EventVisitCancelled       = "visit.cancelled"
	EventVisitStateChanged    = "visit.state_changed"
	EventVisitPaymentRecorded = "visit.payment_recorded"
)

// VisitCreatedEvent is raised when a new visit is opened
type VisitCreatedEvent struct {
	shared.BaseDomainEvent
	Reference string    `json:"reference"`
	AnimalID  uuid.UUID `json:"animal_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
}

// NewVisitCreatedEvent creates a new visit created event
func NewVisitCreatedEvent(visitID uuid.UUID, reference string, animalID, ownerID uuid.UUID) *VisitCreatedEvent {
	return &VisitCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventVisitCreated, "Visit", visitID),
		Reference:       reference,
		AnimalID:        animalID,
		OwnerID:         ownerID,
	}
}

// VisitConfirmedEvent is raised when a visit is confirmed
type VisitConfirmedEvent struct {
	shared.BaseDomainEvent
	Reference string `json:"reference"`
}

// NewVisitConfirmedEvent creates a new visit confirmed event
func NewVisitConfirmedEvent(visitID uuid.UUID, reference string) *VisitConfirmedEvent {
	return &VisitConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventVisitConfirmed, "Visit", visitID),
		Reference:       reference,
	}
}

// VisitCancelledEvent is raised when a visit is cancelled
type VisitCancelledEvent struct {
	shared.BaseDomainEvent
	Reference string `json:"reference"`
}

// NewVisitCancelledEvent creates a new visit cancelled event
func NewVisitCancelledEvent(visitID uuid.UUID, reference string) *VisitCancelledEvent {
	return &VisitCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventVisitCancelled, "Visit", visitID),
		Reference:       reference,
	}
}

// VisitStateChangedEvent is raised on every state transition
type VisitStateChangedEvent struct {
	shared.BaseDomainEvent
	Reference string `json:"reference"`
	FromState string `json:"from_state"`
	ToState   string `json:"to_state"`
}

// NewVisitStateChangedEvent creates a new state changed event
func NewVisitStateChangedEvent(visitID uuid.UUID, reference, fromState, toState string) *VisitStateChangedEvent {
	return &VisitStateChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventVisitStateChanged, "Visit", visitID),
		Reference:       reference,
		FromState:       fromState,
		ToState:         toState,
	}
}

// VisitPaymentRecordedEvent is raised when a payment amount is stored
// on the visit.
type VisitPaymentRecordedEvent struct {
	shared.BaseDomainEvent
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
}

// NewVisitPaymentRecordedEvent creates a new payment recorded event
func NewVisitPaymentRecordedEvent(visitID uuid.UUID, reference string, amount decimal.Decimal, method string) *VisitPaymentRecordedEvent {
	return &VisitPaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventVisitPaymentRecorded, "Visit", visitID),
		Reference:       reference,
		Amount:          amount,
		Method:          method,
	}
}
