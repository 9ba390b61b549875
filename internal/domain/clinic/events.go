package clinic

import (
	"github.com/google/uuid"
	"github.com/vetclinic/backend/internal/domain/shared"
)

const (
	EventAnimalRegistered = "clinic.animal.registered"
	EventOwnerRegistered  = "clinic.owner.registered"
	EventDoctorRegistered = "clinic.doctor.registered"
)

// AnimalRegisteredEvent is raised when a new animal record is created
type AnimalRegisteredEvent struct {
	shared.BaseDomainEvent
	MicrochipNo string    `json:"microchip_no"`
	OwnerID     uuid.UUID `json:"owner_id"`
}

// NewAnimalRegisteredEvent creates a new animal registered event
func NewAnimalRegisteredEvent(animalID uuid.UUID, microchipNo string, ownerID uuid.UUID) *AnimalRegisteredEvent {
	return &AnimalRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventAnimalRegistered, "Animal", animalID),
		MicrochipNo:     microchipNo,
		OwnerID:         ownerID,
	}
}

// OwnerRegisteredEvent is raised when a new owner record is created
type OwnerRegisteredEvent struct {
	shared.BaseDomainEvent
	ContactNumber string `json:"contact_number"`
}

// NewOwnerRegisteredEvent creates a new owner registered event
func NewOwnerRegisteredEvent(ownerID uuid.UUID, contactNumber string) *OwnerRegisteredEvent {
	return &OwnerRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventOwnerRegistered, "Owner", ownerID),
		ContactNumber:   contactNumber,
	}
}

// DoctorRegisteredEvent is raised when a new doctor record is created
type DoctorRegisteredEvent struct {
	shared.BaseDomainEvent
	BranchID uuid.UUID `json:"branch_id"`
}

// NewDoctorRegisteredEvent creates a new doctor registered event
func NewDoctorRegisteredEvent(doctorID, branchID uuid.UUID) *DoctorRegisteredEvent {
	return &DoctorRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDoctorRegistered, "Doctor", doctorID),
		BranchID:        branchID,
	}
}
