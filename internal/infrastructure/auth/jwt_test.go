package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetclinic/backend/internal/domain/identity"
	"github.com/vetclinic/backend/internal/infrastructure/config"
)

func newTestService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:          "test-secret-key-that-is-long-enough",
		TokenExpiration: expiration,
		Issuer:          "vetclinic-test",
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestService(time.Hour)

	user, err := identity.NewUser("reception1", "password123")
	require.NoError(t, err)
	branchID := uuid.New()
	require.NoError(t, user.LockToBranch(branchID))

	token, expiresAt, err := svc.GenerateToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.GetID().String(), claims.UserID)
	assert.Equal(t, "reception1", claims.Username)
	require.Len(t, claims.BranchIDs, 1)

	caller, err := claims.Caller()
	require.NoError(t, err)
	assert.Equal(t, user.GetID(), caller.UserID)
	assert.True(t, caller.IsRestricted())
	assert.True(t, caller.CanAccessBranch(branchID))
	assert.False(t, caller.CanAccessBranch(uuid.New()))
}

func TestJWTService_UnrestrictedUser(t *testing.T) {
	svc := newTestService(time.Hour)

	user, err := identity.NewUser("manager1", "password123")
	require.NoError(t, err)

	token, _, err := svc.GenerateToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	caller, err := claims.Caller()
	require.NoError(t, err)
	assert.False(t, caller.IsRestricted())
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := newTestService(-time.Minute)

	user, err := identity.NewUser("reception1", "password123")
	require.NoError(t, err)

	token, _, err := svc.GenerateToken(user)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_TamperedToken(t *testing.T) {
	svc := newTestService(time.Hour)
	other := NewJWTService(config.JWTConfig{
		Secret:          "a-completely-different-secret-key!!",
		TokenExpiration: time.Hour,
		Issuer:          "vetclinic-test",
	})

	user, err := identity.NewUser("reception1", "password123")
	require.NoError(t, err)

	token, _, err := other.GenerateToken(user)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
