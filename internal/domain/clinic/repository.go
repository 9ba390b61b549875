package clinic

import (
	"context"

	"github.com/google/uuid"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
)

// AnimalRepository defines the interface for animal persistence
type AnimalRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Animal, error)
	FindByMicrochip(ctx context.Context, microchipNo string) (*Animal, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Animal, error)
	SearchByName(ctx context.Context, name string, limit int) ([]*Animal, error)
	SearchByMicrochipPrefix(ctx context.Context, prefix string, limit int) ([]*Animal, error)
	Save(ctx context.Context, animal *Animal) error
}

// OwnerRepository defines the interface for owner persistence
type OwnerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Owner, error)
	FindByContactNumber(ctx context.Context, phone valueobject.Phone) (*Owner, error)
	Save(ctx context.Context, owner *Owner) error
}

// DoctorRepository defines the interface for doctor persistence
type DoctorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	FindByContactNumber(ctx context.Context, phone valueobject.Phone) (*Doctor, error)
	FindByBranch(ctx context.Context, branchID uuid.UUID) ([]*Doctor, error)
	Save(ctx context.Context, doctor *Doctor) error
}

// ServiceRepository defines the interface for clinic service persistence
type ServiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Service, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Service, error)
	FindAll(ctx context.Context) ([]*Service, error)
	Save(ctx context.Context, service *Service) error
}
