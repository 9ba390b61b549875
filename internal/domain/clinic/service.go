package clinic

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vetclinic/backend/internal/domain/catalog"
	"github.com/vetclinic/backend/internal/domain/shared"
)

// ServiceType classifies what a clinic service bills for
type ServiceType string

const (
	ServiceTypeService ServiceType = "service"
	ServiceTypeVaccine ServiceType = "vaccine"
	ServiceTypeTest    ServiceType = "test"
)

// IsValid checks if the service type is valid
func (t ServiceType) IsValid() bool {
	return t == ServiceTypeService || t == ServiceTypeVaccine || t == ServiceTypeTest
}

// TrackingPolicy returns the stock tracking a product backing this
// service type needs. Vaccines are delivered from lot-tracked stock,
// services and tests are not.
func (t ServiceType) TrackingPolicy() catalog.TrackingPolicy {
	if t == ServiceTypeVaccine {
		return catalog.TrackingLot
	}
	return catalog.TrackingNone
}

// Service is a billable clinic offering. Each service is backed by a
// catalog product; combo tests expand into their component products at
// invoicing time instead of being billed directly.
type Service struct {
	shared.BaseAggregateRoot
	Name                string
	Type                ServiceType
	Price               decimal.Decimal
	ProductID           uuid.UUID
	IsCombo             bool
	ComponentProductIDs []uuid.UUID
	Description         string
	Active              bool
}

// NewService creates a new clinic service linked to its backing product
func NewService(name string, serviceType ServiceType, price decimal.Decimal, productID uuid.UUID) (*Service, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Service name cannot be empty")
	}
	if !serviceType.IsValid() {
		return nil, shared.NewValidationError("Service type must be one of: service, vaccine, test")
	}
	if price.IsNegative() {
		return nil, shared.NewValidationError("Service price cannot be negative")
	}
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("Service must be linked to a product")
	}

	return &Service{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Type:              serviceType,
		Price:             price,
		ProductID:         productID,
		Active:            true,
	}, nil
}

// MarkAsCombo flags the service as a combo and records its component
// products. Only test services can be combos.
func (s *Service) MarkAsCombo(componentProductIDs []uuid.UUID) error {
	if s.Type != ServiceTypeTest {
		return shared.NewValidationError("Only test services can be marked as combo")
	}
	if len(componentProductIDs) == 0 {
		return shared.NewValidationError("Combo service requires at least one component product")
	}
	for _, id := range componentProductIDs {
		if id == uuid.Nil {
			return shared.NewValidationError("Combo component product ID cannot be empty")
		}
	}
	s.IsCombo = true
	s.ComponentProductIDs = append([]uuid.UUID(nil), componentProductIDs...)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// SetPrice updates the service price. The backing product's list price
// is kept in step by the registry service.
func (s *Service) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("Service price cannot be negative")
	}
	s.Price = price
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Deactivate archives the service
func (s *Service) Deactivate() {
	s.Active = false
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}
