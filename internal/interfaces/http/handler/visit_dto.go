package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainvisit "github.com/vetclinic/backend/internal/domain/visit"
)

// VisitLineResponse is the API view of a billable visit line
type VisitLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ServiceID   uuid.UUID       `json:"service_id"`
	ServiceType string          `json:"service_type"`
	IsCombo     bool            `json:"is_combo"`
	ProductID   uuid.UUID       `json:"product_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Delivered   bool            `json:"delivered"`
}

// VisitResponse is the API view of a visit
type VisitResponse struct {
	ID                  uuid.UUID           `json:"id"`
	Reference           string              `json:"reference"`
	Date                time.Time           `json:"date"`
	AnimalID            uuid.UUID           `json:"animal_id"`
	OwnerID             uuid.UUID           `json:"owner_id"`
	DoctorID            *uuid.UUID          `json:"doctor_id,omitempty"`
	BranchID            *uuid.UUID          `json:"branch_id,omitempty"`
	Notes               string              `json:"notes,omitempty"`
	TreatmentCharge     decimal.Decimal     `json:"treatment_charge"`
	DiscountPercent     decimal.Decimal     `json:"discount_percent"`
	DiscountFixed       decimal.Decimal     `json:"discount_fixed"`
	Subtotal            decimal.Decimal     `json:"subtotal"`
	TotalAmount         decimal.Decimal     `json:"total_amount"`
	PaymentMethod       string              `json:"payment_method,omitempty"`
	Lines               []VisitLineResponse `json:"lines"`
	InvoiceIDs          []uuid.UUID         `json:"invoice_ids,omitempty"`
	PaymentState        string              `json:"payment_state"`
	State               string              `json:"state"`
	LatestPaymentAmount decimal.Decimal     `json:"latest_payment_amount"`
}

func toVisitResponse(v *domainvisit.Visit) VisitResponse {
	lines := make([]VisitLineResponse, 0, len(v.Lines))
	for _, line := range v.Lines {
		lines = append(lines, VisitLineResponse{
			ID:          line.GetID(),
			ServiceID:   line.ServiceID,
			ServiceType: string(line.ServiceType),
			IsCombo:     line.IsCombo,
			ProductID:   line.ProductID,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Delivered:   line.Delivered,
		})
	}

	invoiceIDs := make([]uuid.UUID, len(v.InvoiceIDs))
	copy(invoiceIDs, v.InvoiceIDs)

	return VisitResponse{
		ID:                  v.GetID(),
		Reference:           v.Reference,
		Date:                v.Date,
		AnimalID:            v.AnimalID,
		OwnerID:             v.OwnerID,
		DoctorID:            v.DoctorID,
		BranchID:            v.BranchID,
		Notes:               v.Notes,
		TreatmentCharge:     v.TreatmentCharge,
		DiscountPercent:     v.DiscountPercent,
		DiscountFixed:       v.DiscountFixed,
		Subtotal:            v.Subtotal,
		TotalAmount:         v.TotalAmount,
		PaymentMethod:       string(v.PaymentMethod),
		Lines:               lines,
		InvoiceIDs:          invoiceIDs,
		PaymentState:        string(v.PaymentState),
		State:               string(v.State),
		LatestPaymentAmount: v.LatestPaymentAmount,
	}
}
