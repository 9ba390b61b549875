package clinic

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vetclinic/backend/internal/domain/shared"
)

// Species classifies an animal
type Species string

const (
	SpeciesDog   Species = "dog"
	SpeciesCat   Species = "cat"
	SpeciesOther Species = "other"
)

// IsValid checks if the species is valid
func (s Species) IsValid() bool {
	return s == SpeciesDog || s == SpeciesCat || s == SpeciesOther
}

// Gender of an animal
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// IsValid checks if the gender is valid
func (g Gender) IsValid() bool {
	return g == GenderMale || g == GenderFemale
}

// Animal is a patient record. The microchip number is the public identifier:
// unique, assigned once at registration and never changed afterwards.
type Animal struct {
	shared.BaseAggregateRoot
	MicrochipNo string
	Name        string
	Species     Species
	Breed       string
	Gender      Gender
	DateOfBirth *time.Time
	OwnerID     uuid.UUID
	Active      bool
	Notes       string
}

// NewAnimal creates a new animal record. microchipNo comes from the clinic
// sequence when the caller has none to supply.
func NewAnimal(microchipNo, name string, species Species, ownerID uuid.UUID) (*Animal, error) {
	microchipNo = strings.TrimSpace(microchipNo)
	if microchipNo == "" {
		return nil, shared.NewValidationError("Microchip number cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Animal name cannot be empty")
	}
	if species != "" && !species.IsValid() {
		return nil, shared.NewValidationError("Species must be one of: dog, cat, other")
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewValidationError("Animal must have an owner")
	}

	animal := &Animal{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MicrochipNo:       microchipNo,
		Name:              name,
		Species:           species,
		OwnerID:           ownerID,
		Active:            true,
	}
	animal.AddDomainEvent(NewAnimalRegisteredEvent(animal.ID, microchipNo, ownerID))
	return animal, nil
}

// SetDateOfBirth records the date of birth
func (a *Animal) SetDateOfBirth(dob time.Time) error {
	if dob.After(time.Now()) {
		return shared.NewValidationError("Date of birth cannot be in the future")
	}
	a.DateOfBirth = &dob
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// SetGender records the gender
func (a *Animal) SetGender(gender Gender) error {
	if !gender.IsValid() {
		return shared.NewValidationError("Gender must be 'male' or 'female'")
	}
	a.Gender = gender
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// Rename updates the animal's call name. The microchip number stays fixed.
func (a *Animal) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("Animal name cannot be empty")
	}
	a.Name = name
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// TransferOwnership moves the animal to a different owner
func (a *Animal) TransferOwnership(newOwnerID uuid.UUID) error {
	if newOwnerID == uuid.Nil {
		return shared.NewValidationError("Animal must have an owner")
	}
	a.OwnerID = newOwnerID
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// Deactivate archives the animal record
func (a *Animal) Deactivate() {
	a.Active = false
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
}

// DisplayName renders the animal's presentation name with its
// microchip tag, e.g. "Tommy #HT000001"
func (a *Animal) DisplayName() string {
	return fmt.Sprintf("%s #%s", a.Name, a.MicrochipNo)
}

// AgeAt renders the animal's age at the given date as a human readable
// string, e.g. "2 years 3 months" or "5 months". Returns "0" when the
// date of birth is unknown.
func (a *Animal) AgeAt(at time.Time) string {
	if a.DateOfBirth == nil {
		return "0"
	}
	years, months := yearsAndMonthsBetween(*a.DateOfBirth, at)
	if years > 0 {
		if months > 0 {
			return fmt.Sprintf("%d %s %d %s", years, plural(years, "year"), months, plural(months, "month"))
		}
		return fmt.Sprintf("%d %s", years, plural(years, "year"))
	}
	return fmt.Sprintf("%d %s", months, plural(months, "month"))
}

// Age renders the animal's current age
func (a *Animal) Age() string {
	return a.AgeAt(time.Now())
}

func yearsAndMonthsBetween(from, to time.Time) (int, int) {
	if to.Before(from) {
		return 0, 0
	}
	years := to.Year() - from.Year()
	months := int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	if months < 0 {
		years--
		months += 12
	}
	if years < 0 {
		return 0, 0
	}
	return years, months
}

func plural(n int, unit string) string {
	if n > 1 {
		return unit + "s"
	}
	return unit
}
