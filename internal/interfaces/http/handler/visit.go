package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	visitapp "github.com/vetclinic/backend/internal/application/visit"
	domainvisit "github.com/vetclinic/backend/internal/domain/visit"
)

// VisitHandler handles visit endpoints
type VisitHandler struct {
	BaseHandler
	visitService *visitapp.VisitService
}

// NewVisitHandler creates a new VisitHandler
func NewVisitHandler(visitService *visitapp.VisitService) *VisitHandler {
	return &VisitHandler{visitService: visitService}
}

// UpdateLineRequest carries a visit line update
type UpdateLineRequest struct {
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// HistoryRequest carries visit history query parameters. The ID
// filters arrive as strings and are parsed after binding.
type HistoryRequest struct {
	AnimalID string     `form:"animal_id" binding:"omitempty,uuid"`
	OwnerID  string     `form:"owner_id" binding:"omitempty,uuid"`
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02"`
	Limit    int        `form:"limit" binding:"omitempty,min=1,max=500"`
}

// RegisterRoutes registers visit routes
func (h *VisitHandler) RegisterRoutes(rg *gin.RouterGroup) {
	visits := rg.Group("/visits")
	{
		visits.POST("", h.CreateVisit)
		visits.GET("/history", h.History)
		visits.GET("/:id", h.GetVisit)
		visits.POST("/:id/lines", h.AddLine)
		visits.PUT("/:id/lines/:lineId", h.UpdateLine)
		visits.DELETE("/:id/lines/:lineId", h.RemoveLine)
		visits.PUT("/:id/charges", h.UpdateCharges)
		visits.POST("/:id/confirm", h.ConfirmVisit)
		visits.POST("/:id/cancel", h.CancelVisit)
	}
}

// CreateVisit opens a draft visit for an animal
func (h *VisitHandler) CreateVisit(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}

	var req visitapp.CreateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	visit, err := h.visitService.CreateVisit(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toVisitResponse(visit))
}

// GetVisit retrieves a visit by ID
func (h *VisitHandler) GetVisit(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	visitID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	visit, err := h.visitService.GetVisit(c.Request.Context(), caller, visitID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toVisitResponse(visit))
}

// AddLine adds a billable line to a draft visit
func (h *VisitHandler) AddLine(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	visitID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req visitapp.LineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	visit, err := h.visitService.AddLine(c.Request.Context(), caller, visitID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toVisitResponse(visit))
}

// UpdateLine changes the quantity or unit price of a visit line
func (h *VisitHandler) UpdateLine(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	visitID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.parseIDParam(c, "lineId")
	if !ok {
		return
	}

	var req UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	visit, err := h.visitService.UpdateLine(c.Request.Context(), caller, visitID, lineID, req.Quantity, req.UnitPrice)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toVisitResponse(visit))
}

// RemoveLine deletes a line from a draft visit
func (h *VisitHandler) RemoveLine(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	visitID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.parseIDParam(c, "lineId")
	if !ok {
		return
	}

	visit, err := h.visitService.RemoveLine(c.Request.Context(), caller, visitID, lineID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toVisitResponse(visit))
}

// UpdateCharges applies treatment charge, discount and notes updates
func (h *VisitHandler) UpdateCharges(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	visitID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req visitapp.UpdateChargesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	visit, err := h.visitService.UpdateCharges(c.Request.Context(), caller, visitID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toVisitResponse(visit))
}

// ConfirmVisit moves a draft visit to confirmed
func (h *VisitHandler) ConfirmVisit(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	visitID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	visit, err := h.visitService.ConfirmVisit(c.Request.Context(), caller, visitID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toVisitResponse(visit))
}

// CancelVisit cancels a visit
func (h *VisitHandler) CancelVisit(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	visitID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	visit, err := h.visitService.CancelVisit(c.Request.Context(), caller, visitID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toVisitResponse(visit))
}

// History returns past visits for an animal or owner, newest first
func (h *VisitHandler) History(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}

	var req HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	if req.AnimalID == "" && req.OwnerID == "" {
		h.BadRequest(c, "Either animal_id or owner_id is required")
		return
	}

	var animalID, ownerID *uuid.UUID
	if req.AnimalID != "" {
		id, err := uuid.Parse(req.AnimalID)
		if err != nil {
			h.BadRequest(c, "Invalid animal_id format")
			return
		}
		animalID = &id
	}
	if req.OwnerID != "" {
		id, err := uuid.Parse(req.OwnerID)
		if err != nil {
			h.BadRequest(c, "Invalid owner_id format")
			return
		}
		ownerID = &id
	}

	entries, err := h.visitService.History(c.Request.Context(), caller, domainvisit.HistoryQuery{
		AnimalID: animalID,
		OwnerID:  ownerID,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		Limit:    req.Limit,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entries)
}
