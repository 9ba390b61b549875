package clinic

import (
	"strings"
	"time"

	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
)

// Owner is the client who brings animals in. It carries the contact
// identity directly: exactly one name and one normalized phone number,
// unique across owners and doctors.
type Owner struct {
	shared.BaseAggregateRoot
	Name          string
	ContactNumber valueobject.Phone
	Email         string
	Address       string
	Active        bool
	Notes         string
}

// NewOwner creates a new owner with a normalized contact number
func NewOwner(name, contactNumber string) (*Owner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Owner name cannot be empty")
	}
	phone, err := valueobject.NewPhone(contactNumber)
	if err != nil {
		return nil, err
	}

	owner := &Owner{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		ContactNumber:     phone,
		Active:            true,
	}
	owner.AddDomainEvent(NewOwnerRegisteredEvent(owner.ID, phone.String()))
	return owner, nil
}

// ChangeContactNumber replaces the contact number. Uniqueness against
// other owners and doctors is checked by the registry service.
func (o *Owner) ChangeContactNumber(contactNumber string) error {
	phone, err := valueobject.NewPhone(contactNumber)
	if err != nil {
		return err
	}
	o.ContactNumber = phone
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// SetEmail updates the email address
func (o *Owner) SetEmail(email string) {
	o.Email = strings.TrimSpace(email)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// SetAddress updates the postal address
func (o *Owner) SetAddress(address string) {
	o.Address = strings.TrimSpace(address)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// Deactivate archives the owner record
func (o *Owner) Deactivate() {
	o.Active = false
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}
