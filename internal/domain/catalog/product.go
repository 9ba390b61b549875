package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vetclinic/backend/internal/domain/shared"
)

// TrackingPolicy controls how stock movements of a product are tracked
type TrackingPolicy string

const (
	TrackingNone TrackingPolicy = "none"
	TrackingLot  TrackingPolicy = "lot"
)

// IsValid checks if the tracking policy is valid
func (p TrackingPolicy) IsValid() bool {
	return p == TrackingNone || p == TrackingLot
}

// ProductCategory groups products and carries a category-level default
// income account used when the product has no override of its own.
type ProductCategory struct {
	shared.BaseAggregateRoot
	Name            string
	IncomeAccountID *uuid.UUID
}

// NewProductCategory creates a new product category
func NewProductCategory(name string) (*ProductCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Category name cannot be empty")
	}
	return &ProductCategory{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
	}, nil
}

// Product is a sellable item backing a clinic service, vaccine or test.
// Vaccines are lot-tracked; services and tests are not.
type Product struct {
	shared.BaseAggregateRoot
	Name            string
	ListPrice       decimal.Decimal
	Tracking        TrackingPolicy
	CategoryID      *uuid.UUID
	IncomeAccountID *uuid.UUID // product-specific override of the category default
	StockQuantity   decimal.Decimal
	Active          bool
}

// NewProduct creates a new product
func NewProduct(name string, listPrice decimal.Decimal, tracking TrackingPolicy) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Product name cannot be empty")
	}
	if !tracking.IsValid() {
		return nil, shared.NewValidationError("Tracking policy must be 'none' or 'lot'")
	}
	if listPrice.IsNegative() {
		return nil, shared.NewValidationError("List price cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		ListPrice:         listPrice,
		Tracking:          tracking,
		StockQuantity:     decimal.Zero,
		Active:            true,
	}, nil
}

// SetListPrice updates the list price
func (p *Product) SetListPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("List price cannot be negative")
	}
	p.ListPrice = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetIncomeAccount sets the product-specific income account override
func (p *Product) SetIncomeAccount(accountID uuid.UUID) {
	p.IncomeAccountID = &accountID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// IsLotTracked reports whether deliveries of this product require a lot record
func (p *Product) IsLotTracked() bool {
	return p.Tracking == TrackingLot
}

// DeductStock reduces the on-hand quantity. Negative on-hand is allowed:
// the clinic records deliveries even when the count was never adjusted.
func (p *Product) DeductStock(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("Deduction quantity must be positive")
	}
	p.StockQuantity = p.StockQuantity.Sub(qty)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// ReceiveStock increases the on-hand quantity
func (p *Product) ReceiveStock(qty decimal.Decimal) error {
	if qty.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("Receipt quantity must be positive")
	}
	p.StockQuantity = p.StockQuantity.Add(qty)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}
