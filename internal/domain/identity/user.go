package identity

import (
	"strings"

	"github.com/google/uuid"
	"github.com/vetclinic/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the status of a staff user
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusDeactivated UserStatus = "deactivated"
)

// Password cost for bcrypt
const bcryptCost = 12

// User represents a staff member of the clinic. AllowedBranchIDs is the
// branch access restriction: an empty set means unrestricted, a non-empty
// set limits every billing query to those branches.
type User struct {
	shared.BaseAggregateRoot
	Username         string
	Email            string
	PasswordHash     string
	DisplayName      string
	Status           UserStatus
	AllowedBranchIDs []uuid.UUID
	Notes            string
}

// NewUser creates a new active user with validated credentials
func NewUser(username, password string) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if len(username) < 3 || len(username) > 50 {
		return nil, shared.NewValidationError("Username must be between 3 and 50 characters")
	}
	if len(password) < 8 {
		return nil, shared.NewValidationError("Password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		PasswordHash:      string(hash),
		Status:            UserStatusActive,
		AllowedBranchIDs:  make([]uuid.UUID, 0),
	}
	u.AddDomainEvent(NewUserCreatedEvent(u))
	return u, nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetEmail sets the user's email
func (u *User) SetEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" && !strings.Contains(email, "@") {
		return shared.NewValidationError("Email address is not valid")
	}
	u.Email = email
	u.Touch()
	u.IncrementVersion()
	return nil
}

// SetDisplayName sets the user's display name
func (u *User) SetDisplayName(name string) error {
	if len(name) > 200 {
		return shared.NewValidationError("Display name cannot exceed 200 characters")
	}
	u.DisplayName = strings.TrimSpace(name)
	u.Touch()
	u.IncrementVersion()
	return nil
}

// LockToBranch replaces the allowed-branch set with exactly the given branch.
// The operation is exclusive, not additive: locking twice with different
// branches leaves only the last one. Idempotent for the same branch.
func (u *User) LockToBranch(branchID uuid.UUID) error {
	if branchID == uuid.Nil {
		return shared.NewValidationError("Branch ID cannot be empty")
	}
	if len(u.AllowedBranchIDs) == 1 && u.AllowedBranchIDs[0] == branchID {
		return nil
	}
	u.AllowedBranchIDs = []uuid.UUID{branchID}
	u.Touch()
	u.IncrementVersion()
	u.AddDomainEvent(NewUserLockedToBranchEvent(u, branchID))
	return nil
}

// GrantBranch adds a branch to the allowed set without replacing it
func (u *User) GrantBranch(branchID uuid.UUID) error {
	if branchID == uuid.Nil {
		return shared.NewValidationError("Branch ID cannot be empty")
	}
	for _, id := range u.AllowedBranchIDs {
		if id == branchID {
			return nil
		}
	}
	u.AllowedBranchIDs = append(u.AllowedBranchIDs, branchID)
	u.Touch()
	u.IncrementVersion()
	return nil
}

// ClearBranchRestriction removes every branch restriction
func (u *User) ClearBranchRestriction() {
	u.AllowedBranchIDs = u.AllowedBranchIDs[:0]
	u.Touch()
	u.IncrementVersion()
}

// IsRestricted reports whether the user is limited to specific branches
func (u *User) IsRestricted() bool {
	return len(u.AllowedBranchIDs) > 0
}

// CanAccessBranch reports whether the user may see records of the branch.
// Unrestricted users can access every branch.
func (u *User) CanAccessBranch(branchID uuid.UUID) bool {
	if !u.IsRestricted() {
		return true
	}
	for _, id := range u.AllowedBranchIDs {
		if id == branchID {
			return true
		}
	}
	return false
}

// Deactivate marks the user as deactivated
func (u *User) Deactivate() {
	u.Status = UserStatusDeactivated
	u.Touch()
	u.IncrementVersion()
}

// Caller is the explicit caller identity threaded through every operation.
// It replaces any ambient "current user" state: handlers build it from the
// authenticated request and services receive it as a parameter.
type Caller struct {
	UserID           uuid.UUID
	AllowedBranchIDs []uuid.UUID
}

// CallerFromUser builds a Caller snapshot from a user aggregate
func CallerFromUser(u *User) Caller {
	ids := make([]uuid.UUID, len(u.AllowedBranchIDs))
	copy(ids, u.AllowedBranchIDs)
	return Caller{UserID: u.ID, AllowedBranchIDs: ids}
}

// IsRestricted reports whether the caller is limited to specific branches
func (c Caller) IsRestricted() bool {
	return len(c.AllowedBranchIDs) > 0
}

// CanAccessBranch reports whether the caller may see records of the branch.
// Membership is an exact ID comparison against the structured set; a record
// without a branch never matches a restricted caller.
func (c Caller) CanAccessBranch(branchID uuid.UUID) bool {
	if !c.IsRestricted() {
		return true
	}
	for _, id := range c.AllowedBranchIDs {
		if id == branchID {
			return true
		}
	}
	return false
}
