package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vetclinic/backend/internal/domain/clinic"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
)

// OwnerModel is the persistence model for the Owner aggregate
type OwnerModel struct {
	AggregateModel
	Name          string `gorm:"type:varchar(200);not null"`
	ContactNumber string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Email         string `gorm:"type:varchar(200)"`
	Address       string `gorm:"type:text"`
	Active        bool   `gorm:"not null"`
	Notes         string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (OwnerModel) TableName() string {
	return "owners"
}

// ToDomain converts the persistence model to a domain Owner
func (m *OwnerModel) ToDomain() *clinic.Owner {
	phone, _ := valueobject.NewPhone(m.ContactNumber)
	return &clinic.Owner{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		ContactNumber:     phone,
		Email:             m.Email,
		Address:           m.Address,
		Active:            m.Active,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Owner
func (m *OwnerModel) FromDomain(o *clinic.Owner) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.Name = o.Name
	m.ContactNumber = o.ContactNumber.String()
	m.Email = o.Email
	m.Address = o.Address
	m.Active = o.Active
	m.Notes = o.Notes
}

// AnimalModel is the persistence model for the Animal aggregate
type AnimalModel struct {
	AggregateModel
	MicrochipNo string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string     `gorm:"type:varchar(200);not null"`
	Species     string     `gorm:"type:varchar(20);not null"`
	Breed       string     `gorm:"type:varchar(100)"`
	Gender      string     `gorm:"type:varchar(10)"`
	DateOfBirth *time.Time `gorm:""`
	OwnerID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Active      bool       `gorm:"not null"`
	Notes       string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (AnimalModel) TableName() string {
	return "animals"
}

// ToDomain converts the persistence model to a domain Animal
func (m *AnimalModel) ToDomain() *clinic.Animal {
	return &clinic.Animal{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		MicrochipNo:       m.MicrochipNo,
		Name:              m.Name,
		Species:           clinic.Species(m.Species),
		Breed:             m.Breed,
		Gender:            clinic.Gender(m.Gender),
		DateOfBirth:       m.DateOfBirth,
		OwnerID:           m.OwnerID,
		Active:            m.Active,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Animal
func (m *AnimalModel) FromDomain(a *clinic.Animal) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.MicrochipNo = a.MicrochipNo
	m.Name = a.Name
	m.Species = string(a.Species)
	m.Breed = a.Breed
	m.Gender = string(a.Gender)
	m.DateOfBirth = a.DateOfBirth
	m.OwnerID = a.OwnerID
	m.Active = a.Active
	m.Notes = a.Notes
}

// DoctorModel is the persistence model for the Doctor aggregate
type DoctorModel struct {
	AggregateModel
	Name          string    `gorm:"type:varchar(200);not null"`
	ContactNumber string    `gorm:"type:varchar(20);not null;uniqueIndex"`
	BranchID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Specialty     string    `gorm:"type:varchar(200)"`
	Active        bool      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DoctorModel) TableName() string {
	return "doctors"
}

// ToDomain converts the persistence model to a domain Doctor
func (m *DoctorModel) ToDomain() *clinic.Doctor {
	phone, _ := valueobject.NewPhone(m.ContactNumber)
	return &clinic.Doctor{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		ContactNumber:     phone,
		BranchID:          m.BranchID,
		Specialty:         m.Specialty,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Doctor
func (m *DoctorModel) FromDomain(d *clinic.Doctor) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.Name = d.Name
	m.ContactNumber = d.ContactNumber.String()
	m.BranchID = d.BranchID
	m.Specialty = d.Specialty
	m.Active = d.Active
}

// ServiceModel is the persistence model for the clinic Service aggregate.
// Combo component product IDs live in a separate join table.
type ServiceModel struct {
	AggregateModel
	Name        string                 `gorm:"type:varchar(200);not null"`
	Type        string                 `gorm:"type:varchar(20);not null"`
	Price       decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	ProductID   uuid.UUID              `gorm:"type:uuid;not null;index"`
	IsCombo     bool                   `gorm:"not null;default:false"`
	Description string                 `gorm:"type:text"`
	Active      bool                   `gorm:"not null"`
	Components  []ServiceComponentModel `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ServiceModel) TableName() string {
	return "services"
}

// ServiceComponentModel links a combo service to a component product
type ServiceComponentModel struct {
	ServiceID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position  int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ServiceComponentModel) TableName() string {
	return "service_components"
}

// ToDomain converts the persistence model to a domain Service
func (m *ServiceModel) ToDomain() *clinic.Service {
	components := make([]uuid.UUID, len(m.Components))
	for i, c := range m.Components {
		components[i] = c.ProductID
	}
	return &clinic.Service{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		Name:                m.Name,
		Type:                clinic.ServiceType(m.Type),
		Price:               m.Price,
		ProductID:           m.ProductID,
		IsCombo:             m.IsCombo,
		ComponentProductIDs: components,
		Description:         m.Description,
		Active:              m.Active,
	}
}

// FromDomain populates the persistence model from a domain Service
func (m *ServiceModel) FromDomain(s *clinic.Service) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Name = s.Name
	m.Type = string(s.Type)
	m.Price = s.Price
	m.ProductID = s.ProductID
	m.IsCombo = s.IsCombo
	m.Description = s.Description
	m.Active = s.Active
	m.Components = make([]ServiceComponentModel, len(s.ComponentProductIDs))
	for i, productID := range s.ComponentProductIDs {
		m.Components[i] = ServiceComponentModel{
			ServiceID: s.GetID(),
			ProductID: productID,
			Position:  i,
		}
	}
}
