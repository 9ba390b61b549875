package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
)

// newMockOwnerRepository creates a GormOwnerRepository over a mocked
// SQL connection for exercising error paths without a real database
func newMockOwnerRepository(t *testing.T) (*GormOwnerRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormOwnerRepository(gormDB), mock, mockDB
}

func TestGormOwnerRepository_FindByID_NotFound(t *testing.T) {
	repo, mock, mockDB := newMockOwnerRepository(t)
	defer mockDB.Close()

	ownerID := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "owners" WHERE id = \$1 ORDER BY .* LIMIT .*`).
		WithArgs(ownerID, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	owner, err := repo.FindByID(context.Background(), ownerID)

	assert.Nil(t, owner)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOwnerRepository_FindByID_DriverError(t *testing.T) {
	repo, mock, mockDB := newMockOwnerRepository(t)
	defer mockDB.Close()

	ownerID := uuid.New()
	driverErr := errors.New("connection reset by peer")
	mock.ExpectQuery(`SELECT \* FROM "owners" WHERE id = \$1 ORDER BY .* LIMIT .*`).
		WithArgs(ownerID, 1).
		WillReturnError(driverErr)

	owner, err := repo.FindByID(context.Background(), ownerID)

	assert.Nil(t, owner)
	require.Error(t, err)
	// Connection failures must not masquerade as missing records
	assert.NotErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOwnerRepository_FindByContactNumber_NotFound(t *testing.T) {
	repo, mock, mockDB := newMockOwnerRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "owners" WHERE contact_number = \$1 ORDER BY .* LIMIT .*`).
		WithArgs("01712345678", 1).
		WillReturnError(gorm.ErrRecordNotFound)

	phone, err := valueobject.NewPhone("01712345678")
	require.NoError(t, err)
	owner, err := repo.FindByContactNumber(context.Background(), phone)

	assert.Nil(t, owner)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
