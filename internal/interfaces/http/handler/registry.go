package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	clinicapp "github.com/vetclinic/backend/internal/application/clinic"
)

// RegistryHandler handles owner, doctor, animal and service endpoints
type RegistryHandler struct {
	BaseHandler
	registryService *clinicapp.RegistryService
}

// NewRegistryHandler creates a new RegistryHandler
func NewRegistryHandler(registryService *clinicapp.RegistryService) *RegistryHandler {
	return &RegistryHandler{registryService: registryService}
}

// UpdateServicePriceRequest carries a price update
type UpdateServicePriceRequest struct {
	Price decimal.Decimal `json:"price" binding:"required"`
}

// MarkComboRequest carries the component products of a combo service
type MarkComboRequest struct {
	ComponentProductIDs []uuid.UUID `json:"component_product_ids" binding:"required,min=1"`
}

// SearchAnimalsRequest carries the front-desk lookup term
type SearchAnimalsRequest struct {
	Query string `form:"q" binding:"required"`
	Limit int    `form:"limit"`
}

// RegisterRoutes registers registry routes
func (h *RegistryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/owners", h.RegisterOwner)
	rg.POST("/doctors", h.RegisterDoctor)

	animals := rg.Group("/animals")
	{
		animals.POST("", h.RegisterAnimal)
		animals.GET("", h.SearchAnimals)
		animals.GET("/:id", h.GetAnimal)
	}

	services := rg.Group("/services")
	{
		services.POST("", h.CreateService)
		services.GET("", h.ListServices)
		services.PUT("/:id/price", h.UpdateServicePrice)
		services.PUT("/:id/combo", h.MarkServiceAsCombo)
	}
}

// RegisterOwner creates a new owner
func (h *RegistryHandler) RegisterOwner(c *gin.Context) {
	var req clinicapp.RegisterOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	owner, err := h.registryService.RegisterOwner(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toOwnerResponse(owner))
}

// RegisterDoctor creates a new doctor bound to a branch
func (h *RegistryHandler) RegisterDoctor(c *gin.Context) {
	var req clinicapp.RegisterDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	doctor, err := h.registryService.RegisterDoctor(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toDoctorResponse(doctor))
}

// RegisterAnimal creates a new animal record
func (h *RegistryHandler) RegisterAnimal(c *gin.Context) {
	var req clinicapp.RegisterAnimalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	animal, err := h.registryService.RegisterAnimal(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toAnimalResponse(animal))
}

// SearchAnimals looks animals up by name, microchip prefix or exact
// microchip ("#<chip>")
func (h *RegistryHandler) SearchAnimals(c *gin.Context) {
	var req SearchAnimalsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	animals, err := h.registryService.SearchAnimals(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	responses := make([]AnimalResponse, 0, len(animals))
	for _, a := range animals {
		responses = append(responses, toAnimalResponse(a))
	}
	h.Success(c, responses)
}

// GetAnimal retrieves an animal by ID
func (h *RegistryHandler) GetAnimal(c *gin.Context) {
	animalID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	animal, err := h.registryService.GetAnimal(c.Request.Context(), animalID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toAnimalResponse(animal))
}

// CreateService creates a clinic service and its backing product
func (h *RegistryHandler) CreateService(c *gin.Context) {
	var req clinicapp.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	service, err := h.registryService.CreateService(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, toServiceResponse(service))
}

// ListServices lists all clinic services, active first
func (h *RegistryHandler) ListServices(c *gin.Context) {
	services, err := h.registryService.ListServices(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	out := make([]ServiceResponse, 0, len(services))
	for _, s := range services {
		out = append(out, toServiceResponse(s))
	}
	h.Success(c, out)
}

// UpdateServicePrice changes a service's price
func (h *RegistryHandler) UpdateServicePrice(c *gin.Context) {
	serviceID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateServicePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	service, err := h.registryService.UpdateServicePrice(c.Request.Context(), serviceID, req.Price)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toServiceResponse(service))
}

// MarkServiceAsCombo marks a test service as a combo of component products
func (h *RegistryHandler) MarkServiceAsCombo(c *gin.Context) {
	serviceID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req MarkComboRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	service, err := h.registryService.MarkServiceAsCombo(c.Request.Context(), serviceID, req.ComponentProductIDs)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toServiceResponse(service))
}
