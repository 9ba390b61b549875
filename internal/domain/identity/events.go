package identity

import (
	"github.com/google/uuid"
	"github.com/vetclinic/backend/internal/domain/shared"
)

// Event types for the identity domain
const (
	EventUserCreated        = "identity.user.created"
	EventUserLockedToBranch = "identity.user.locked_to_branch"
	EventBranchCreated      = "identity.branch.created"
)

// UserCreatedEvent is raised when a user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
}

// NewUserCreatedEvent creates a new UserCreatedEvent
func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventUserCreated, "User", u.ID),
		Username:        u.Username,
	}
}

// UserLockedToBranchEvent is raised when a user's allowed-branch set is
// replaced with a single branch
type UserLockedToBranchEvent struct {
	shared.BaseDomainEvent
	BranchID uuid.UUID `json:"branch_id"`
}

// NewUserLockedToBranchEvent creates a new UserLockedToBranchEvent
func NewUserLockedToBranchEvent(u *User, branchID uuid.UUID) *UserLockedToBranchEvent {
	return &UserLockedToBranchEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventUserLockedToBranch, "User", u.ID),
		BranchID:        branchID,
	}
}

// BranchCreatedEvent is raised when a branch is created
type BranchCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
	Code string `json:"code"`
}

// NewBranchCreatedEvent creates a new BranchCreatedEvent
func NewBranchCreatedEvent(b *Branch) *BranchCreatedEvent {
	return &BranchCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventBranchCreated, "Branch", b.ID),
		Name:            b.Name,
		Code:            b.Code,
	}
}
