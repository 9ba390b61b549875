package clinic

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
)

// Doctor is a staff veterinarian. Every doctor belongs to exactly one
// branch; the phone number shares the uniqueness pool with owners.
type Doctor struct {
	shared.BaseAggregateRoot
	Name          string
	ContactNumber valueobject.Phone
	BranchID      uuid.UUID
	Specialty     string
	Active        bool
	Notes         string
}

// NewDoctor creates a new doctor bound to a branch
func NewDoctor(name, contactNumber string, branchID uuid.UUID) (*Doctor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Doctor name cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewValidationError("Doctor must be assigned to a branch")
	}
	phone, err := valueobject.NewPhone(contactNumber)
	if err != nil {
		return nil, err
	}

	doctor := &Doctor{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		ContactNumber:     phone,
		BranchID:          branchID,
		Active:            true,
	}
	doctor.AddDomainEvent(NewDoctorRegisteredEvent(doctor.ID, branchID))
	return doctor, nil
}

// ChangeContactNumber replaces the contact number
func (d *Doctor) ChangeContactNumber(contactNumber string) error {
	phone, err := valueobject.NewPhone(contactNumber)
	if err != nil {
		return err
	}
	d.ContactNumber = phone
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}

// TransferToBranch moves the doctor to another branch
func (d *Doctor) TransferToBranch(branchID uuid.UUID) error {
	if branchID == uuid.Nil {
		return shared.NewValidationError("Doctor must be assigned to a branch")
	}
	d.BranchID = branchID
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
	return nil
}

// Deactivate archives the doctor record
func (d *Doctor) Deactivate() {
	d.Active = false
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
}
