package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vetclinic/backend/internal/domain/identity"
	"github.com/vetclinic/backend/internal/domain/shared"
)

// AccessService manages users, branches and branch restrictions
type AccessService struct {
	userRepo   identity.UserRepository
	branchRepo identity.BranchRepository
	logger     *zap.Logger
}

// NewAccessService creates a new AccessService
func NewAccessService(userRepo identity.UserRepository, branchRepo identity.BranchRepository, logger *zap.Logger) *AccessService {
	return &AccessService{
		userRepo:   userRepo,
		branchRepo: branchRepo,
		logger:     logger,
	}
}

// LockUserToBranch replaces the user's allowed-branch set with exactly
// the given branch. Calling it again with another branch leaves only
// the last one.
func (s *AccessService) LockUserToBranch(ctx context.Context, userID, branchID uuid.UUID) (*identity.User, error) {
	branch, err := s.branchRepo.FindByID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if !branch.Active {
		return nil, shared.NewValidationError("Cannot lock a user to an inactive branch")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.LockToBranch(branchID); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	s.logger.Info("user locked to branch",
		zap.String("user_id", userID.String()),
		zap.String("branch_id", branchID.String()))
	return user, nil
}

// ClearBranchRestriction removes all branch restrictions from a user
func (s *AccessService) ClearBranchRestriction(ctx context.Context, userID uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.ClearBranchRestriction()
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return user, nil
}

// CreateBranch registers a new branch
func (s *AccessService) CreateBranch(ctx context.Context, name, code string) (*identity.Branch, error) {
	branch, err := identity.NewBranch(name, code)
	if err != nil {
		return nil, err
	}
	if err := s.branchRepo.Save(ctx, branch); err != nil {
		return nil, fmt.Errorf("failed to save branch: %w", err)
	}
	return branch, nil
}

// ListBranches returns branches, optionally restricted to active ones
func (s *AccessService) ListBranches(ctx context.Context, activeOnly bool) ([]*identity.Branch, error) {
	return s.branchRepo.FindAll(ctx, activeOnly)
}

// CallerFor loads a user and builds the caller identity used by the
// branch access guard.
func (s *AccessService) CallerFor(ctx context.Context, userID uuid.UUID) (identity.Caller, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return identity.Caller{}, err
	}
	return identity.CallerFromUser(user), nil
}
