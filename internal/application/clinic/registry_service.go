package clinic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vetclinic/backend/internal/domain/catalog"
	"github.com/vetclinic/backend/internal/domain/clinic"
	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
)

const defaultSearchLimit = 20

// RegistryService manages animal, owner, doctor and service records
type RegistryService struct {
	animalRepo   clinic.AnimalRepository
	ownerRepo    clinic.OwnerRepository
	doctorRepo   clinic.DoctorRepository
	serviceRepo  clinic.ServiceRepository
	productRepo  catalog.ProductRepository
	categoryRepo catalog.ProductCategoryRepository
	sequences    shared.SequenceGenerator
	logger       *zap.Logger
}

// NewRegistryService creates a new RegistryService
func NewRegistryService(
	animalRepo clinic.AnimalRepository,
	ownerRepo clinic.OwnerRepository,
	doctorRepo clinic.DoctorRepository,
	serviceRepo clinic.ServiceRepository,
	productRepo catalog.ProductRepository,
	categoryRepo catalog.ProductCategoryRepository,
	sequences shared.SequenceGenerator,
	logger *zap.Logger,
) *RegistryService {
	return &RegistryService{
		animalRepo:   animalRepo,
		ownerRepo:    ownerRepo,
		doctorRepo:   doctorRepo,
		serviceRepo:  serviceRepo,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		sequences:    sequences,
		logger:       logger,
	}
}

// ensurePhoneUnique checks the phone against both owners and doctors.
// The ignore ID skips the record being updated.
func (s *RegistryService) ensurePhoneUnique(ctx context.Context, phone valueobject.Phone, ignoreID uuid.UUID) error {
	owner, err := s.ownerRepo.FindByContactNumber(ctx, phone)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("failed to check owner phone: %w", err)
	}
	if owner != nil && owner.GetID() != ignoreID {
		return shared.NewValidationError("Contact number must be unique among animal owners.")
	}
	doctor, err := s.doctorRepo.FindByContactNumber(ctx, phone)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("failed to check doctor phone: %w", err)
	}
	if doctor != nil && doctor.GetID() != ignoreID {
		return shared.NewValidationError("Contact number must be unique among doctors.")
	}
	return nil
}

// RegisterOwnerRequest carries the owner registration input
type RegisterOwnerRequest struct {
	Name          string `json:"name" binding:"required"`
	ContactNumber string `json:"contact_number" binding:"required"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

// RegisterOwner creates an owner after checking phone uniqueness
func (s *RegistryService) RegisterOwner(ctx context.Context, req RegisterOwnerRequest) (*clinic.Owner, error) {
	owner, err := clinic.NewOwner(req.Name, req.ContactNumber)
	if err != nil {
		return nil, err
	}
	if err := s.ensurePhoneUnique(ctx, owner.ContactNumber, owner.GetID()); err != nil {
		return nil, err
	}
	owner.SetEmail(req.Email)
	owner.SetAddress(req.Address)
	if err := s.ownerRepo.Save(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to save owner: %w", err)
	}
	s.logger.Info("owner registered",
		zap.String("owner_id", owner.GetID().String()),
		zap.String("phone", owner.ContactNumber.String()))
	return owner, nil
}

// RegisterDoctorRequest carries the doctor registration input
type RegisterDoctorRequest struct {
	Name          string    `json:"name" binding:"required"`
	ContactNumber string    `json:"contact_number" binding:"required"`
	BranchID      uuid.UUID `json:"branch_id" binding:"required"`
	Specialty     string    `json:"specialty"`
}

// RegisterDoctor creates a doctor bound to a branch
func (s *RegistryService) RegisterDoctor(ctx context.Context, req RegisterDoctorRequest) (*clinic.Doctor, error) {
	doctor, err := clinic.NewDoctor(req.Name, req.ContactNumber, req.BranchID)
	if err != nil {
		return nil, err
	}
	if err := s.ensurePhoneUnique(ctx, doctor.ContactNumber, doctor.GetID()); err != nil {
		return nil, err
	}
	doctor.Specialty = req.Specialty
	if err := s.doctorRepo.Save(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to save doctor: %w", err)
	}
	s.logger.Info("doctor registered",
		zap.String("doctor_id", doctor.GetID().String()),
		zap.String("branch_id", req.BranchID.String()))
	return doctor, nil
}

// RegisterAnimalRequest carries the animal registration input. Leave
// MicrochipNo empty to have the clinic sequence assign one.
type RegisterAnimalRequest struct {
	MicrochipNo string     `json:"microchip_no"`
	Name        string     `json:"name" binding:"required"`
	Species     string     `json:"species"`
	Breed       string     `json:"breed"`
	Gender      string     `json:"gender"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	OwnerID     uuid.UUID  `json:"owner_id" binding:"required"`
	Notes       string     `json:"notes"`
}

// RegisterAnimal creates an animal, allocating a microchip number when
// none is supplied and rejecting duplicates when one is.
func (s *RegistryService) RegisterAnimal(ctx context.Context, req RegisterAnimalRequest) (*clinic.Animal, error) {
	if _, err := s.ownerRepo.FindByID(ctx, req.OwnerID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewValidationError("Add an owner.")
		}
		return nil, fmt.Errorf("failed to load owner: %w", err)
	}

	microchip := req.MicrochipNo
	if microchip == "" {
		next, err := s.sequences.Next(ctx, shared.SequenceMicrochip)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate microchip number: %w", err)
		}
		microchip = next
	} else {
		existing, err := s.animalRepo.FindByMicrochip(ctx, microchip)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("failed to check microchip: %w", err)
		}
		if existing != nil {
			return nil, shared.NewDomainErrorf(shared.CodeValidation,
				"Animal ID '%s' already exists!", microchip)
		}
	}

	animal, err := clinic.NewAnimal(microchip, req.Name, clinic.Species(req.Species), req.OwnerID)
	if err != nil {
		return nil, err
	}
	animal.Breed = req.Breed
	animal.Notes = req.Notes
	if req.Gender != "" {
		if err := animal.SetGender(clinic.Gender(req.Gender)); err != nil {
			return nil, err
		}
	}
	if req.DateOfBirth != nil {
		if err := animal.SetDateOfBirth(*req.DateOfBirth); err != nil {
			return nil, err
		}
	}

	if err := s.animalRepo.Save(ctx, animal); err != nil {
		return nil, fmt.Errorf("failed to save animal: %w", err)
	}
	s.logger.Info("animal registered",
		zap.String("animal_id", animal.GetID().String()),
		zap.String("microchip_no", animal.MicrochipNo))
	return animal, nil
}

// CreateServiceRequest carries the clinic service input. When ProductID
// is empty a backing product is provisioned with the tracking policy
// the service type calls for.
type CreateServiceRequest struct {
	Name        string          `json:"name" binding:"required"`
	Type        string          `json:"type" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	ProductID   *uuid.UUID      `json:"product_id"`
	Description string          `json:"description"`
}

// CreateService creates a clinic service and its backing product
func (s *RegistryService) CreateService(ctx context.Context, req CreateServiceRequest) (*clinic.Service, error) {
	serviceType := clinic.ServiceType(req.Type)
	if !serviceType.IsValid() {
		return nil, shared.NewValidationError("Service type must be one of: service, vaccine, test")
	}

	var productID uuid.UUID
	if req.ProductID != nil {
		product, err := s.productRepo.FindByID(ctx, *req.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to load product: %w", err)
		}
		productID = product.GetID()
	} else {
		product, err := catalog.NewProduct(req.Name, req.Price, serviceType.TrackingPolicy())
		if err != nil {
			return nil, err
		}
		if err := s.productRepo.Save(ctx, product); err != nil {
			return nil, fmt.Errorf("failed to save product: %w", err)
		}
		productID = product.GetID()
		s.logger.Info("product provisioned for service",
			zap.String("product_id", productID.String()),
			zap.String("tracking", string(product.Tracking)))
	}

	svc, err := clinic.NewService(req.Name, serviceType, req.Price, productID)
	if err != nil {
		return nil, err
	}
	svc.Description = req.Description
	if err := s.serviceRepo.Save(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to save service: %w", err)
	}
	return svc, nil
}

// UpdateServicePrice changes the service price and keeps the backing
// product's list price in step.
func (s *RegistryService) UpdateServicePrice(ctx context.Context, serviceID uuid.UUID, price decimal.Decimal) (*clinic.Service, error) {
	svc, err := s.serviceRepo.FindByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if err := svc.SetPrice(price); err != nil {
		return nil, err
	}
	if err := s.serviceRepo.Save(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to save service: %w", err)
	}

	product, err := s.productRepo.FindByID(ctx, svc.ProductID)
	if err == nil {
		if err := product.SetListPrice(price); err == nil {
			if err := s.productRepo.Save(ctx, product); err != nil {
				s.logger.Warn("failed to sync product list price",
					zap.String("product_id", product.GetID().String()), zap.Error(err))
			}
		}
	}
	return svc, nil
}

// MarkServiceAsCombo flags a test service as a combo with components
func (s *RegistryService) MarkServiceAsCombo(ctx context.Context, serviceID uuid.UUID, componentProductIDs []uuid.UUID) (*clinic.Service, error) {
	svc, err := s.serviceRepo.FindByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	products, err := s.productRepo.FindByIDs(ctx, componentProductIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load component products: %w", err)
	}
	if len(products) != len(componentProductIDs) {
		return nil, shared.NewValidationError("One or more component products do not exist")
	}
	if err := svc.MarkAsCombo(componentProductIDs); err != nil {
		return nil, err
	}
	if err := s.serviceRepo.Save(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to save service: %w", err)
	}
	return svc, nil
}

// GetAnimal looks up one animal
func (s *RegistryService) GetAnimal(ctx context.Context, id uuid.UUID) (*clinic.Animal, error) {
	return s.animalRepo.FindByID(ctx, id)
}

// SearchAnimals resolves a lookup term the way the front desk types it:
// a term starting with "#" is an exact microchip lookup, anything else
// matches microchip prefixes first and falls back to a name search.
func (s *RegistryService) SearchAnimals(ctx context.Context, query string, limit int) ([]*clinic.Animal, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, shared.NewValidationError("Search query cannot be empty.")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	if strings.HasPrefix(query, "#") {
		animal, err := s.animalRepo.FindByMicrochip(ctx, strings.TrimPrefix(query, "#"))
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return []*clinic.Animal{}, nil
			}
			return nil, err
		}
		return []*clinic.Animal{animal}, nil
	}

	animals, err := s.animalRepo.SearchByMicrochipPrefix(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(animals) > 0 {
		return animals, nil
	}
	return s.animalRepo.SearchByName(ctx, query, limit)
}

// ListServices returns all clinic services
func (s *RegistryService) ListServices(ctx context.Context) ([]*clinic.Service, error) {
	return s.serviceRepo.FindAll(ctx)
}
