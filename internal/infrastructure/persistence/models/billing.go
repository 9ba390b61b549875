package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vetclinic/backend/internal/domain/billing"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
)

// AccountModel is the persistence model for a ledger account
type AccountModel struct {
	AggregateModel
	Code   string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name   string `gorm:"type:varchar(200);not null"`
	Type   string `gorm:"type:varchar(20);not null;index"`
	Active bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *billing.Account {
	return &billing.Account{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Type:              billing.AccountType(m.Type),
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Account
func (m *AccountModel) FromDomain(a *billing.Account) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Code = a.Code
	m.Name = a.Name
	m.Type = string(a.Type)
	m.Active = a.Active
}

// JournalModel is the persistence model for a payment journal
type JournalModel struct {
	AggregateModel
	Name             string     `gorm:"type:varchar(200);not null"`
	Type             string     `gorm:"type:varchar(10);not null;index"`
	DefaultAccountID *uuid.UUID `gorm:"type:uuid"`
	Active           bool       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (JournalModel) TableName() string {
	return "journals"
}

// ToDomain converts the persistence model to a domain Journal
func (m *JournalModel) ToDomain() *billing.Journal {
	return &billing.Journal{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Type:              billing.JournalType(m.Type),
		DefaultAccountID:  m.DefaultAccountID,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Journal
func (m *JournalModel) FromDomain(j *billing.Journal) {
	m.FromDomainAggregateRoot(j.BaseAggregateRoot)
	m.Name = j.Name
	m.Type = string(j.Type)
	m.DefaultAccountID = j.DefaultAccountID
	m.Active = j.Active
}

// BillingPartnerModel is the persistence model for a billing partner
type BillingPartnerModel struct {
	AggregateModel
	OwnerID             uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	Name                string     `gorm:"type:varchar(200);not null"`
	Phone               string     `gorm:"type:varchar(20);not null"`
	Email               string     `gorm:"type:varchar(200)"`
	ReceivableAccountID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (BillingPartnerModel) TableName() string {
	return "billing_partners"
}

// ToDomain converts the persistence model to a domain BillingPartner
func (m *BillingPartnerModel) ToDomain() *billing.BillingPartner {
	phone, _ := valueobject.NewPhone(m.Phone)
	return &billing.BillingPartner{
		BaseAggregateRoot:   m.ToDomainAggregateRoot(),
		OwnerID:             m.OwnerID,
		Name:                m.Name,
		Phone:               phone,
		Email:               m.Email,
		ReceivableAccountID: m.ReceivableAccountID,
	}
}

// FromDomain populates the persistence model from a domain BillingPartner
func (m *BillingPartnerModel) FromDomain(p *billing.BillingPartner) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.OwnerID = p.OwnerID
	m.Name = p.Name
	m.Phone = p.Phone.String()
	m.Email = p.Email
	m.ReceivableAccountID = p.ReceivableAccountID
}

// InvoiceModel is the persistence model for the Invoice aggregate
type InvoiceModel struct {
	AggregateModel
	Number         string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	PartnerID      uuid.UUID          `gorm:"type:uuid;not null;index"`
	VisitID        *uuid.UUID         `gorm:"type:uuid;index"`
	BranchID       *uuid.UUID         `gorm:"type:uuid;index"`
	InvoiceDate    time.Time          `gorm:"not null;index"`
	Origin         string             `gorm:"type:varchar(100)"`
	AmountTotal    decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	AmountResidual decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	State          string             `gorm:"type:varchar(20);not null;default:'draft';index"`
	PaymentState   string             `gorm:"type:varchar(20);not null;default:'not_paid';index"`
	Lines          []InvoiceLineModel `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceLineModel is the persistence model for an invoice line
type InvoiceLineModel struct {
	BaseModel
	InvoiceID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       *uuid.UUID      `gorm:"type:uuid"`
	Description     string          `gorm:"type:varchar(200);not null"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	AccountID       uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (InvoiceLineModel) TableName() string {
	return "invoice_lines"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	lines := make([]*billing.InvoiceLine, len(m.Lines))
	for i := range m.Lines {
		lines[i] = m.Lines[i].ToDomain()
	}
	return &billing.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Number:            m.Number,
		PartnerID:         m.PartnerID,
		VisitID:           m.VisitID,
		BranchID:          m.BranchID,
		InvoiceDate:       m.InvoiceDate,
		Origin:            m.Origin,
		Lines:             lines,
		AmountTotal:       valueobject.NewMoneyBDT(m.AmountTotal),
		AmountResidual:    valueobject.NewMoneyBDT(m.AmountResidual),
		State:             billing.InvoiceState(m.State),
		PaymentState:      billing.InvoicePaymentState(m.PaymentState),
	}
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.Number = inv.Number
	m.PartnerID = inv.PartnerID
	m.VisitID = inv.VisitID
	m.BranchID = inv.BranchID
	m.InvoiceDate = inv.InvoiceDate
	m.Origin = inv.Origin
	m.AmountTotal = inv.AmountTotal.Amount()
	m.AmountResidual = inv.AmountResidual.Amount()
	m.State = string(inv.State)
	m.PaymentState = string(inv.PaymentState)
	m.Lines = make([]InvoiceLineModel, len(inv.Lines))
	for i, line := range inv.Lines {
		m.Lines[i].FromDomain(line)
	}
}

// ToDomain converts the persistence model to a domain InvoiceLine
func (m *InvoiceLineModel) ToDomain() *billing.InvoiceLine {
	return &billing.InvoiceLine{
		BaseEntity:      m.BaseModel.ToDomain(),
		InvoiceID:       m.InvoiceID,
		ProductID:       m.ProductID,
		Description:     m.Description,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		DiscountPercent: m.DiscountPercent,
		AccountID:       m.AccountID,
	}
}

// FromDomain populates the persistence model from a domain InvoiceLine
func (m *InvoiceLineModel) FromDomain(l *billing.InvoiceLine) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.InvoiceID = l.InvoiceID
	m.ProductID = l.ProductID
	m.Description = l.Description
	m.Quantity = l.Quantity
	m.UnitPrice = l.UnitPrice
	m.DiscountPercent = l.DiscountPercent
	m.AccountID = l.AccountID
}

// PaymentModel is the persistence model for the Payment aggregate
type PaymentModel struct {
	AggregateModel
	Number      string                   `gorm:"type:varchar(50);not null;uniqueIndex"`
	PartnerID   uuid.UUID                `gorm:"type:uuid;not null;index"`
	VisitID     *uuid.UUID               `gorm:"type:uuid;index"`
	JournalID   uuid.UUID                `gorm:"type:uuid;not null"`
	Amount      decimal.Decimal          `gorm:"type:decimal(18,2);not null"`
	Manual      bool                     `gorm:"not null;default:false"`
	Reconciled  bool                     `gorm:"not null"`
	PaidAt      time.Time                `gorm:"not null"`
	Allocations []PaymentAllocationModel `gorm:"foreignKey:PaymentID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// PaymentAllocationModel records one payment-to-invoice allocation
type PaymentAllocationModel struct {
	PaymentID uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Position  int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PaymentAllocationModel) TableName() string {
	return "payment_allocations"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *billing.Payment {
	allocations := make([]billing.PaymentAllocation, len(m.Allocations))
	for i, a := range m.Allocations {
		allocations[i] = billing.PaymentAllocation{
			InvoiceID: a.InvoiceID,
			Amount:    valueobject.NewMoneyBDT(a.Amount),
		}
	}
	return &billing.Payment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Number:            m.Number,
		PartnerID:         m.PartnerID,
		VisitID:           m.VisitID,
		JournalID:         m.JournalID,
		Amount:            valueobject.NewMoneyBDT(m.Amount),
		Allocations:       allocations,
		Manual:            m.Manual,
		Reconciled:        m.Reconciled,
		PaidAt:            m.PaidAt,
	}
}

// FromDomain populates the persistence model from a domain Payment
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Number = p.Number
	m.PartnerID = p.PartnerID
	m.VisitID = p.VisitID
	m.JournalID = p.JournalID
	m.Amount = p.Amount.Amount()
	m.Manual = p.Manual
	m.Reconciled = p.Reconciled
	m.PaidAt = p.PaidAt
	m.Allocations = make([]PaymentAllocationModel, len(p.Allocations))
	for i, a := range p.Allocations {
		m.Allocations[i] = PaymentAllocationModel{
			PaymentID: p.GetID(),
			InvoiceID: a.InvoiceID,
			Amount:    a.Amount.Amount(),
			Position:  i,
		}
	}
}

// JournalEntryModel is one posted ledger entry. Structured payment
// registrations and manual fallback entries both land here.
type JournalEntryModel struct {
	BaseModel
	Reference  string                  `gorm:"type:varchar(100);not null;index"`
	JournalID  uuid.UUID               `gorm:"type:uuid;not null;index"`
	InvoiceID  *uuid.UUID              `gorm:"type:uuid;index"`
	Manual     bool                    `gorm:"not null;default:false"`
	Reconciled bool                    `gorm:"not null;default:false"`
	PostedAt   time.Time               `gorm:"not null"`
	Lines      []JournalEntryLineModel `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// JournalEntryLineModel is one debit or credit side of an entry
type JournalEntryLineModel struct {
	BaseModel
	EntryID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartnerID   *uuid.UUID      `gorm:"type:uuid"`
	Description string          `gorm:"type:varchar(200)"`
	Debit       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Credit      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (JournalEntryLineModel) TableName() string {
	return "journal_entry_lines"
}
