package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OutcomeStatus tags the result of invoice generation
type OutcomeStatus string

const (
	OutcomeReady          OutcomeStatus = "ready"
	OutcomeNeedsSelection OutcomeStatus = "needs_selection"
)

// ComboComponentOption is one selectable component for a combo line,
// pre-filled with the component product's list price. A combo without
// configured components falls back to the combo product itself.
type ComboComponentOption struct {
	LineID         uuid.UUID       `json:"line_id"`
	ServiceID      uuid.UUID       `json:"service_id"`
	ComboProductID uuid.UUID       `json:"combo_product_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
}

// ComboSelection is the suspended half of invoice generation: the visit
// has combo test lines whose components must be chosen before an
// invoice can exist. Nothing is persisted for the pending invoice; if
// the selection is never resumed, no invoice is created.
type ComboSelection struct {
	VisitID uuid.UUID              `json:"visit_id"`
	Options []ComboComponentOption `json:"options"`
}

// ComboChoice is one confirmed component with its quantity. Choices with
// a non-positive quantity are skipped on resume.
type ComboChoice struct {
	ServiceID uuid.UUID       `json:"service_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// InvoiceOutcome is the tagged result of invoice generation: either a
// posted invoice or a pending combo selection.
type InvoiceOutcome struct {
	Status    OutcomeStatus   `json:"status"`
	Invoice   *Invoice        `json:"invoice,omitempty"`
	Selection *ComboSelection `json:"selection,omitempty"`
}

// ReadyOutcome wraps a generated invoice
func ReadyOutcome(inv *Invoice) InvoiceOutcome {
	return InvoiceOutcome{Status: OutcomeReady, Invoice: inv}
}

// NeedsSelectionOutcome wraps a pending combo selection
func NeedsSelectionOutcome(sel *ComboSelection) InvoiceOutcome {
	return InvoiceOutcome{Status: OutcomeNeedsSelection, Selection: sel}
}
