package identity

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/vetclinic/backend/internal/domain/identity"
	"github.com/vetclinic/backend/internal/domain/shared"
)

// TokenIssuer signs access tokens for authenticated users
type TokenIssuer interface {
	GenerateToken(user *identity.User) (string, time.Time, error)
}

// LoginResult carries the signed token and the authenticated user
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *identity.User
}

// AuthService authenticates staff users
type AuthService struct {
	userRepo identity.UserRepository
	issuer   TokenIssuer
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo identity.UserRepository, issuer TokenIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		issuer:   issuer,
		logger:   logger,
	}
}

// Login verifies the credentials and issues a token carrying the user's
// branch restrictions. Unknown usernames and wrong passwords produce
// the same error so the response does not reveal which one failed.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, err
	}
	if !user.VerifyPassword(password) {
		s.logger.Info("login rejected", zap.String("username", user.Username))
		return nil, shared.ErrUnauthorized
	}
	if user.Status != identity.UserStatusActive {
		return nil, shared.ErrUnauthorized
	}

	token, expiresAt, err := s.issuer.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.Int("branch_restrictions", len(user.AllowedBranchIDs)))

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// RegisterUser creates a new staff user
func (s *AuthService) RegisterUser(ctx context.Context, username, password, displayName string) (*identity.User, error) {
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	user, err := identity.NewUser(username, password)
	if err != nil {
		return nil, err
	}
	if displayName != "" {
		if err := user.SetDisplayName(displayName); err != nil {
			return nil, err
		}
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
