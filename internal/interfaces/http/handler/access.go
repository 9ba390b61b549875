package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	identityapp "github.com/vetclinic/backend/internal/application/identity"
	"github.com/vetclinic/backend/internal/domain/identity"
)

// AccessHandler handles branch and branch-restriction endpoints
type AccessHandler struct {
	BaseHandler
	accessService *identityapp.AccessService
}

// NewAccessHandler creates a new AccessHandler
func NewAccessHandler(accessService *identityapp.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

// CreateBranchRequest carries branch creation input
type CreateBranchRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
	Code string `json:"code" binding:"required,min=1,max=20"`
}

// LockToBranchRequest carries the branch a user is locked to
type LockToBranchRequest struct {
	BranchID uuid.UUID `json:"branch_id" binding:"required"`
}

// BranchResponse is the API view of a branch
type BranchResponse struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Code   string    `json:"code"`
	Active bool      `json:"active"`
}

func toBranchResponse(b *identity.Branch) BranchResponse {
	return BranchResponse{
		ID:     b.GetID(),
		Name:   b.Name,
		Code:   b.Code,
		Active: b.Active,
	}
}

func toUserResponse(u *identity.User) UserResponse {
	branchIDs := make([]uuid.UUID, len(u.AllowedBranchIDs))
	copy(branchIDs, u.AllowedBranchIDs)
	return UserResponse{
		ID:          u.GetID(),
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		Status:      string(u.Status),
		BranchIDs:   branchIDs,
	}
}

// RegisterRoutes registers branch and access routes
func (h *AccessHandler) RegisterRoutes(rg *gin.RouterGroup) {
	branches := rg.Group("/branches")
	{
		branches.POST("", h.CreateBranch)
		branches.GET("", h.ListBranches)
	}

	users := rg.Group("/users")
	{
		users.PUT("/:id/branch-lock", h.LockUserToBranch)
		users.DELETE("/:id/branch-lock", h.ClearBranchRestriction)
	}
}

// CreateBranch creates a new clinic branch
func (h *AccessHandler) CreateBranch(c *gin.Context) {
	var req CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	branch, err := h.accessService.CreateBranch(c.Request.Context(), req.Name, req.Code)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toBranchResponse(branch))
}

// ListBranches lists branches; ?active_only=true filters out
// deactivated ones
func (h *AccessHandler) ListBranches(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"
	branches, err := h.accessService.ListBranches(c.Request.Context(), activeOnly)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	out := make([]BranchResponse, 0, len(branches))
	for _, b := range branches {
		out = append(out, toBranchResponse(b))
	}
	h.Success(c, out)
}

// LockUserToBranch restricts a user to a single branch
func (h *AccessHandler) LockUserToBranch(c *gin.Context) {
	userID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req LockToBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	user, err := h.accessService.LockUserToBranch(c.Request.Context(), userID, req.BranchID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toUserResponse(user))
}

// ClearBranchRestriction removes all branch restrictions from a user
func (h *AccessHandler) ClearBranchRestriction(c *gin.Context) {
	userID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := h.accessService.ClearBranchRestriction(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toUserResponse(user))
}
