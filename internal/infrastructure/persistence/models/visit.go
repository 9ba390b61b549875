package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vetclinic/backend/internal/domain/clinic"
	domainvisit "github.com/vetclinic/backend/internal/domain/visit"
)

// VisitModel is the persistence model for the Visit aggregate
type VisitModel struct {
	AggregateModel
	Reference           string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	Date                time.Time        `gorm:"not null;index"`
	AnimalID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	OwnerID             uuid.UUID        `gorm:"type:uuid;not null;index"`
	DoctorID            *uuid.UUID       `gorm:"type:uuid;index"`
	BranchID            *uuid.UUID       `gorm:"type:uuid;index"`
	Notes               string           `gorm:"type:text"`
	TreatmentCharge     decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountPercent     decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:0"`
	DiscountFixed       decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	Subtotal            decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount         decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	PaymentMethod       string           `gorm:"type:varchar(10)"`
	PaymentState        string           `gorm:"type:varchar(20);not null;default:'not_paid'"`
	State               string           `gorm:"type:varchar(20);not null;default:'draft';index"`
	LatestPaymentAmount decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	Delivered           bool             `gorm:"not null;default:false"`
	Lines               []VisitLineModel `gorm:"foreignKey:VisitID;constraint:OnDelete:CASCADE"`
	Invoices            []VisitInvoiceModel `gorm:"foreignKey:VisitID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (VisitModel) TableName() string {
	return "visits"
}

// VisitLineModel is the persistence model for a visit line
type VisitLineModel struct {
	BaseModel
	VisitID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ServiceID   uuid.UUID       `gorm:"type:uuid;not null"`
	ServiceType string          `gorm:"type:varchar(10);not null"`
	IsCombo     bool            `gorm:"not null;default:false"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	Description string          `gorm:"type:varchar(200);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Delivered   bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (VisitLineModel) TableName() string {
	return "visit_lines"
}

// VisitInvoiceModel links a visit to one of its invoices
type VisitInvoiceModel struct {
	VisitID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	InvoiceID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position  int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (VisitInvoiceModel) TableName() string {
	return "visit_invoices"
}

// ToDomain converts the persistence model to a domain Visit
func (m *VisitModel) ToDomain() *domainvisit.Visit {
	lines := make([]*domainvisit.VisitLine, len(m.Lines))
	for i := range m.Lines {
		lines[i] = m.Lines[i].ToDomain()
	}
	invoiceIDs := make([]uuid.UUID, len(m.Invoices))
	for i, link := range m.Invoices {
		invoiceIDs[i] = link.InvoiceID
	}
	return &domainvisit.Visit{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		Reference:           m.Reference,
		Date:                m.Date,
		AnimalID:            m.AnimalID,
		OwnerID:             m.OwnerID,
		DoctorID:            m.DoctorID,
		BranchID:            m.BranchID,
		Notes:               m.Notes,
		TreatmentCharge:     m.TreatmentCharge,
		DiscountPercent:     m.DiscountPercent,
		DiscountFixed:       m.DiscountFixed,
		Subtotal:            m.Subtotal,
		TotalAmount:         m.TotalAmount,
		PaymentMethod:       domainvisit.PaymentMethod(m.PaymentMethod),
		Lines:               lines,
		InvoiceIDs:          invoiceIDs,
		PaymentState:        domainvisit.PaymentState(m.PaymentState),
		State:               domainvisit.State(m.State),
		LatestPaymentAmount: m.LatestPaymentAmount,
		Delivered:           m.Delivered,
	}
}

// FromDomain populates the persistence model from a domain Visit
func (m *VisitModel) FromDomain(v *domainvisit.Visit) {
	m.FromDomainAggregateRoot(v.BaseAggregateRoot)
	m.Reference = v.Reference
	m.Date = v.Date
	m.AnimalID = v.AnimalID
	m.OwnerID = v.OwnerID
	m.DoctorID = v.DoctorID
	m.BranchID = v.BranchID
	m.Notes = v.Notes
	m.TreatmentCharge = v.TreatmentCharge
	m.DiscountPercent = v.DiscountPercent
	m.DiscountFixed = v.DiscountFixed
	m.Subtotal = v.Subtotal
	m.TotalAmount = v.TotalAmount
	m.PaymentMethod = string(v.PaymentMethod)
	m.PaymentState = string(v.PaymentState)
	m.State = string(v.State)
	m.LatestPaymentAmount = v.LatestPaymentAmount
	m.Delivered = v.Delivered

	m.Lines = make([]VisitLineModel, len(v.Lines))
	for i, line := range v.Lines {
		m.Lines[i].FromDomain(line)
	}
	m.Invoices = make([]VisitInvoiceModel, len(v.InvoiceIDs))
	for i, invoiceID := range v.InvoiceIDs {
		m.Invoices[i] = VisitInvoiceModel{
			VisitID:   v.GetID(),
			InvoiceID: invoiceID,
			Position:  i,
		}
	}
}

// ToDomain converts the persistence model to a domain VisitLine
func (m *VisitLineModel) ToDomain() *domainvisit.VisitLine {
	return &domainvisit.VisitLine{
		BaseEntity:  m.BaseModel.ToDomain(),
		VisitID:     m.VisitID,
		ServiceID:   m.ServiceID,
		ServiceType: clinic.ServiceType(m.ServiceType),
		IsCombo:     m.IsCombo,
		ProductID:   m.ProductID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Delivered:   m.Delivered,
	}
}

// FromDomain populates the persistence model from a domain VisitLine
func (m *VisitLineModel) FromDomain(line *domainvisit.VisitLine) {
	m.FromDomainBaseEntity(line.BaseEntity)
	m.VisitID = line.VisitID
	m.ServiceID = line.ServiceID
	m.ServiceType = string(line.ServiceType)
	m.IsCombo = line.IsCombo
	m.ProductID = line.ProductID
	m.Description = line.Description
	m.Quantity = line.Quantity
	m.UnitPrice = line.UnitPrice
	m.Delivered = line.Delivered
}
