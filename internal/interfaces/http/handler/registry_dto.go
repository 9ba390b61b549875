package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vetclinic/backend/internal/domain/clinic"
)

// OwnerResponse is the API view of an owner
type OwnerResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactNumber string    `json:"contact_number"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	Active        bool      `json:"active"`
}

// DoctorResponse is the API view of a doctor
type DoctorResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactNumber string    `json:"contact_number"`
	BranchID      uuid.UUID `json:"branch_id"`
	Specialty     string    `json:"specialty,omitempty"`
	Active        bool      `json:"active"`
}

// AnimalResponse is the API view of an animal
type AnimalResponse struct {
	ID          uuid.UUID  `json:"id"`
	MicrochipNo string     `json:"microchip_no"`
	Name        string     `json:"name"`
	DisplayName string     `json:"display_name"`
	Species     string     `json:"species,omitempty"`
	Breed       string     `json:"breed,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Active      bool       `json:"active"`
	Notes       string     `json:"notes,omitempty"`
}

// ServiceResponse is the API view of a clinic service
type ServiceResponse struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	Type                string          `json:"type"`
	Price               decimal.Decimal `json:"price"`
	ProductID           uuid.UUID       `json:"product_id"`
	IsCombo             bool            `json:"is_combo"`
	ComponentProductIDs []uuid.UUID     `json:"component_product_ids,omitempty"`
	Description         string          `json:"description,omitempty"`
	Active              bool            `json:"active"`
}

func toOwnerResponse(o *clinic.Owner) OwnerResponse {
	return OwnerResponse{
		ID:            o.GetID(),
		Name:          o.Name,
		ContactNumber: o.ContactNumber.String(),
		Email:         o.Email,
		Address:       o.Address,
		Active:        o.Active,
	}
}

func toDoctorResponse(d *clinic.Doctor) DoctorResponse {
	return DoctorResponse{
		ID:            d.GetID(),
		Name:          d.Name,
		ContactNumber: d.ContactNumber.String(),
		BranchID:      d.BranchID,
		Specialty:     d.Specialty,
		Active:        d.Active,
	}
}

func toAnimalResponse(a *clinic.Animal) AnimalResponse {
	return AnimalResponse{
		ID:          a.GetID(),
		MicrochipNo: a.MicrochipNo,
		Name:        a.Name,
		DisplayName: a.DisplayName(),
		Species:     string(a.Species),
		Breed:       a.Breed,
		Gender:      string(a.Gender),
		DateOfBirth: a.DateOfBirth,
		OwnerID:     a.OwnerID,
		Active:      a.Active,
		Notes:       a.Notes,
	}
}

func toServiceResponse(s *clinic.Service) ServiceResponse {
	componentIDs := make([]uuid.UUID, len(s.ComponentProductIDs))
	copy(componentIDs, s.ComponentProductIDs)
	return ServiceResponse{
		ID:                  s.GetID(),
		Name:                s.Name,
		Type:                string(s.Type),
		Price:               s.Price,
		ProductID:           s.ProductID,
		IsCombo:             s.IsCombo,
		ComponentProductIDs: componentIDs,
		Description:         s.Description,
		Active:              s.Active,
	}
}
