package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)
	Save(ctx context.Context, product *Product) error
}

// ProductCategoryRepository defines the interface for product category persistence
type ProductCategoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProductCategory, error)
	FindByName(ctx context.Context, name string) (*ProductCategory, error)
	Save(ctx context.Context, category *ProductCategory) error
}
