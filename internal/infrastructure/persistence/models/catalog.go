package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vetclinic/backend/internal/domain/catalog"
)

// ProductCategoryModel is the persistence model for product categories
type ProductCategoryModel struct {
	AggregateModel
	Name            string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	IncomeAccountID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ProductCategoryModel) TableName() string {
	return "product_categories"
}

// ToDomain converts the persistence model to a domain ProductCategory
func (m *ProductCategoryModel) ToDomain() *catalog.ProductCategory {
	return &catalog.ProductCategory{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		IncomeAccountID:   m.IncomeAccountID,
	}
}

// FromDomain populates the persistence model from a domain ProductCategory
func (m *ProductCategoryModel) FromDomain(c *catalog.ProductCategory) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.IncomeAccountID = c.IncomeAccountID
}

// ProductModel is the persistence model for the Product aggregate
type ProductModel struct {
	AggregateModel
	Name            string          `gorm:"type:varchar(200);not null"`
	ListPrice       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Tracking        string          `gorm:"type:varchar(10);not null;default:'none'"`
	CategoryID      *uuid.UUID      `gorm:"type:uuid;index"`
	IncomeAccountID *uuid.UUID      `gorm:"type:uuid"`
	StockQuantity   decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	Active          bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		ListPrice:         m.ListPrice,
		Tracking:          catalog.TrackingPolicy(m.Tracking),
		CategoryID:        m.CategoryID,
		IncomeAccountID:   m.IncomeAccountID,
		StockQuantity:     m.StockQuantity,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.ListPrice = p.ListPrice
	m.Tracking = string(p.Tracking)
	m.CategoryID = p.CategoryID
	m.IncomeAccountID = p.IncomeAccountID
	m.StockQuantity = p.StockQuantity
	m.Active = p.Active
}
