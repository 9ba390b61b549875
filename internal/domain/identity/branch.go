package identity

import (
	"strings"
	"time"

	"github.com/vetclinic/backend/internal/domain/shared"
)

// Branch represents a clinic location / cost center (analytic account).
// Doctors are bound to exactly one branch; users may be restricted to a
// set of branches for billing visibility.
type Branch struct {
	shared.BaseAggregateRoot
	Name   string
	Code   string
	Active bool
	Notes  string
}

// NewBranch creates a new branch
func NewBranch(name, code string) (*Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Branch name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("Branch name cannot exceed 200 characters")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewValidationError("Branch code cannot be empty")
	}

	b := &Branch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Code:              code,
		Active:            true,
	}
	b.AddDomainEvent(NewBranchCreatedEvent(b))
	return b, nil
}

// Rename changes the branch display name
func (b *Branch) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("Branch name cannot be empty")
	}
	b.Name = name
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// Deactivate marks the branch inactive; existing records keep their reference
func (b *Branch) Deactivate() {
	b.Active = false
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
}
