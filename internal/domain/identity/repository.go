package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Save(ctx context.Context, user *User) error
	SaveWithLock(ctx context.Context, user *User) error
}

// BranchRepository defines the interface for branch persistence
type BranchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Branch, error)
	FindByCode(ctx context.Context, code string) (*Branch, error)
	FindAll(ctx context.Context, activeOnly bool) ([]*Branch, error)
	Save(ctx context.Context, branch *Branch) error
}
