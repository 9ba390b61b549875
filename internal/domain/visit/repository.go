package visit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HistoryQuery filters visits for the history view. Fields combine with
// AND; zero values are ignored.
type HistoryQuery struct {
	AnimalID *uuid.UUID
	OwnerID  *uuid.UUID
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
}

// VisitRepository defines the interface for visit persistence
type VisitRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Visit, error)
	FindByReference(ctx context.Context, reference string) (*Visit, error)
	FindByAnimal(ctx context.Context, animalID uuid.UUID) ([]*Visit, error)
	// Search returns visits matching the query, newest first
	Search(ctx context.Context, query HistoryQuery) ([]*Visit, error)
	Save(ctx context.Context, visit *Visit) error
}
