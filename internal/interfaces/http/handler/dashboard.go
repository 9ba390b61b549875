package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	billingapp "github.com/vetclinic/backend/internal/application/billing"
)

// DashboardHandler handles branch totals endpoints
type DashboardHandler struct {
	BaseHandler
	dashboardService *billingapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *billingapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// BranchTotalsRequest carries the reporting date range
type BranchTotalsRequest struct {
	From time.Time `form:"from" binding:"required" time_format:"2006-01-02"`
	To   time.Time `form:"to" binding:"required" time_format:"2006-01-02"`
}

// RegisterRoutes registers dashboard routes
func (h *DashboardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard/branch-totals", h.BranchTotals)
}

// BranchTotals returns per-branch collection totals split by payment
// method, limited to the caller's allowed branches
func (h *DashboardHandler) BranchTotals(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}

	var req BranchTotalsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters, from and to are required as YYYY-MM-DD")
		return
	}
	if req.To.Before(req.From) {
		h.BadRequest(c, "to must not be before from")
		return
	}

	totals, err := h.dashboardService.TotalsByBranch(c.Request.Context(), caller, req.From, req.To)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, totals)
}
