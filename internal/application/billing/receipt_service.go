package billing

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vetclinic/backend/internal/domain/billing"
	"github.com/vetclinic/backend/internal/domain/clinic"
	"github.com/vetclinic/backend/internal/domain/identity"
	domainvisit "github.com/vetclinic/backend/internal/domain/visit"
)

// ReceiptService renders the printable receipt for a visit
type ReceiptService struct {
	visitRepo  domainvisit.VisitRepository
	animalRepo clinic.AnimalRepository
	ownerRepo  clinic.OwnerRepository
	doctorRepo clinic.DoctorRepository
	renderer   billing.ReceiptRenderer
	logger     *zap.Logger
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(
	visitRepo domainvisit.VisitRepository,
	animalRepo clinic.AnimalRepository,
	ownerRepo clinic.OwnerRepository,
	doctorRepo clinic.DoctorRepository,
	renderer billing.ReceiptRenderer,
	logger *zap.Logger,
) *ReceiptService {
	return &ReceiptService{
		visitRepo:  visitRepo,
		animalRepo: animalRepo,
		ownerRepo:  ownerRepo,
		doctorRepo: doctorRepo,
		renderer:   renderer,
		logger:     logger,
	}
}

// RenderVisitReceipt builds the receipt data for a visit and renders it
func (s *ReceiptService) RenderVisitReceipt(ctx context.Context, caller identity.Caller, visitID uuid.UUID) ([]byte, error) {
	v, err := s.visitRepo.FindByID(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if err := ensureBranchAccess(caller, v.BranchID); err != nil {
		return nil, err
	}

	data := billing.ReceiptData{
		VisitReference:  v.Reference,
		Date:            v.Date.Format("2006-01-02 15:04"),
		Subtotal:        v.Subtotal,
		TreatmentCharge: v.TreatmentCharge,
		DiscountPercent: v.DiscountPercent,
		DiscountFixed:   v.DiscountFixed,
		TotalAmount:     v.TotalAmount,
		PaidAmount:      v.LatestPaymentAmount,
		PaymentMethod:   string(v.PaymentMethod),
	}

	if animal, err := s.animalRepo.FindByID(ctx, v.AnimalID); err == nil {
		data.AnimalName = animal.Name
	}
	if owner, err := s.ownerRepo.FindByID(ctx, v.OwnerID); err == nil {
		data.OwnerName = owner.Name
		data.OwnerPhone = owner.ContactNumber.String()
	}
	if v.DoctorID != nil {
		if doctor, err := s.doctorRepo.FindByID(ctx, *v.DoctorID); err == nil {
			data.DoctorName = doctor.Name
		}
	}
	for _, line := range v.ReceiptLines() {
		data.Lines = append(data.Lines, billing.ReceiptLine{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    line.Subtotal(),
		})
	}

	doc, err := s.renderer.RenderVisitReceipt(ctx, data)
	if err != nil {
		return nil, err
	}
	s.logger.Info("visit receipt rendered", zap.String("reference", v.Reference))
	return doc, nil
}
