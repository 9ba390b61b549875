package visit

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vetclinic/backend/internal/domain/billing"
	"github.com/vetclinic/backend/internal/domain/clinic"
	"github.com/vetclinic/backend/internal/domain/identity"
	"github.com/vetclinic/backend/internal/domain/shared"
	domainvisit "github.com/vetclinic/backend/internal/domain/visit"
)

// VisitService drives the visit lifecycle: creation, line edits,
// confirmation and cancellation, plus the history view.
type VisitService struct {
	visitRepo   domainvisit.VisitRepository
	animalRepo  clinic.AnimalRepository
	ownerRepo   clinic.OwnerRepository
	doctorRepo  clinic.DoctorRepository
	serviceRepo clinic.ServiceRepository
	invoiceRepo billing.InvoiceRepository
	sequences   shared.SequenceGenerator
	logger      *zap.Logger
}

// NewVisitService creates a new VisitService
func NewVisitService(
	visitRepo domainvisit.VisitRepository,
	animalRepo clinic.AnimalRepository,
	ownerRepo clinic.OwnerRepository,
	doctorRepo clinic.DoctorRepository,
	serviceRepo clinic.ServiceRepository,
	invoiceRepo billing.InvoiceRepository,
	sequences shared.SequenceGenerator,
	logger *zap.Logger,
) *VisitService {
	return &VisitService{
		visitRepo:   visitRepo,
		animalRepo:  animalRepo,
		ownerRepo:   ownerRepo,
		doctorRepo:  doctorRepo,
		serviceRepo: serviceRepo,
		invoiceRepo: invoiceRepo,
		sequences:   sequences,
		logger:      logger,
	}
}

// ensureBranchAccess rejects callers restricted to branches that do not
// include the visit's branch. Visits without a branch are open to all.
func ensureBranchAccess(caller identity.Caller, branchID *uuid.UUID) error {
	if !caller.IsRestricted() {
		return nil
	}
	if branchID == nil || !caller.CanAccessBranch(*branchID) {
		return shared.ErrForbidden
	}
	return nil
}

// LineInput is one requested visit line
type LineInput struct {
	ServiceID uuid.UUID        `json:"service_id" binding:"required"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CreateVisitRequest carries the visit creation input. The owner is
// derived from the animal when not supplied.
type CreateVisitRequest struct {
	AnimalID uuid.UUID   `json:"animal_id" binding:"required"`
	OwnerID  *uuid.UUID  `json:"owner_id"`
	DoctorID *uuid.UUID  `json:"doctor_id"`
	Notes    string      `json:"notes"`
	Lines    []LineInput `json:"lines"`
}

// CreateVisit opens a draft visit with a sequence-assigned reference
func (s *VisitService) CreateVisit(ctx context.Context, caller identity.Caller, req CreateVisitRequest) (*domainvisit.Visit, error) {
	animal, err := s.animalRepo.FindByID(ctx, req.AnimalID)
	if err != nil {
		return nil, err
	}

	ownerID := animal.OwnerID
	if req.OwnerID != nil {
		ownerID = *req.OwnerID
	}
	if _, err := s.ownerRepo.FindByID(ctx, ownerID); err != nil {
		return nil, err
	}

	reference, err := s.sequences.Next(ctx, shared.SequenceVisit)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate visit reference: %w", err)
	}

	v, err := domainvisit.NewVisit(reference, animal.GetID(), ownerID)
	if err != nil {
		return nil, err
	}
	v.SetNotes(req.Notes)

	if req.DoctorID != nil {
		doctor, err := s.doctorRepo.FindByID(ctx, *req.DoctorID)
		if err != nil {
			return nil, err
		}
		if err := ensureBranchAccess(caller, &doctor.BranchID); err != nil {
			return nil, err
		}
		if err := v.AssignDoctor(doctor.GetID(), doctor.BranchID); err != nil {
			return nil, err
		}
	}

	for _, lineReq := range req.Lines {
		if _, err := s.addLineFromInput(ctx, v, lineReq); err != nil {
			return nil, err
		}
	}

	if err := s.visitRepo.Save(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to save visit: %w", err)
	}
	s.logger.Info("visit created",
		zap.String("reference", v.Reference),
		zap.String("animal_id", v.AnimalID.String()),
		zap.String("total", v.TotalAmount.String()))
	return v, nil
}

func (s *VisitService) addLineFromInput(ctx context.Context, v *domainvisit.Visit, req LineInput) (*domainvisit.VisitLine, error) {
	svc, err := s.serviceRepo.FindByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	unitPrice := svc.Price
	if req.UnitPrice != nil {
		unitPrice = *req.UnitPrice
	}
	return v.AddLine(svc, req.Quantity, unitPrice)
}

func (s *VisitService) loadVisit(ctx context.Context, caller identity.Caller, visitID uuid.UUID) (*domainvisit.Visit, error) {
	v, err := s.visitRepo.FindByID(ctx, visitID)
	if err != nil {
		return nil, err
	}
	if err := ensureBranchAccess(caller, v.BranchID); err != nil {
		return nil, err
	}
	return v, nil
}

// GetVisit looks up one visit the caller may see
func (s *VisitService) GetVisit(ctx context.Context, caller identity.Caller, visitID uuid.UUID) (*domainvisit.Visit, error) {
	return s.loadVisit(ctx, caller, visitID)
}

// AddLine appends a line to a draft visit
func (s *VisitService) AddLine(ctx context.Context, caller identity.Caller, visitID uuid.UUID, req LineInput) (*domainvisit.Visit, error) {
	v, err := s.loadVisit(ctx, caller, visitID)
	if err != nil {
		return nil, err
	}
	if _, err := s.addLineFromInput(ctx, v, req); err != nil {
		return nil, err
	}
	if err := s.visitRepo.Save(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to save visit: %w", err)
	}
	return v, nil
}

// UpdateLine changes an existing line's quantity and price
func (s *VisitService) UpdateLine(ctx context.Context, caller identity.Caller, visitID, lineID uuid.UUID, quantity, unitPrice decimal.Decimal) (*domainvisit.Visit, error) {
	v, err := s.loadVisit(ctx, caller, visitID)
	if err != nil {
		return nil, err
	}
	if err := v.UpdateLine(lineID, quantity, unitPrice); err != nil {
		return nil, err
	}
	if err := s.visitRepo.Save(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to save visit: %w", err)
	}
	return v, nil
}

// RemoveLine deletes a line from a draft visit
func (s *VisitService) RemoveLine(ctx context.Context, caller identity.Caller, visitID, lineID uuid.UUID) (*domainvisit.Visit, error) {
	v, err := s.loadVisit(ctx, caller, visitID)
	if err != nil {
		return nil, err
	}
	if err := v.RemoveLine(lineID); err != nil {
		return nil, err
	}
	if err := s.visitRepo.Save(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to save visit: %w", err)
	}
	return v, nil
}

// UpdateChargesRequest carries treatment charge and discount updates.
// Nil fields are left untouched.
type UpdateChargesRequest struct {
	TreatmentCharge *decimal.Decimal `json:"treatment_charge"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
	DiscountFixed   *decimal.Decimal `json:"discount_fixed"`
	Notes           *string          `json:"notes"`
}

// UpdateCharges applies charge, discount and notes updates
func (s *VisitService) UpdateCharges(ctx context.Context, caller identity.Caller, visitID uuid.UUID, req UpdateChargesRequest) (*domainvisit.Visit, error) {
	v, err := s.loadVisit(ctx, caller, visitID)
	if err != nil {
		return nil, err
	}
	if req.TreatmentCharge != nil {
		if err := v.SetTreatmentCharge(*req.TreatmentCharge); err != nil {
			return nil, err
		}
	}
	if req.DiscountPercent != nil {
		if err := v.SetDiscountPercent(*req.DiscountPercent); err != nil {
			return nil, err
		}
	}
	if req.DiscountFixed != nil {
		if err := v.SetDiscountFixed(*req.DiscountFixed); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		v.SetNotes(*req.Notes)
	}
	if err := s.visitRepo.Save(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to save visit: %w", err)
	}
	return v, nil
}

// ConfirmVisit moves a draft visit to confirmed
func (s *VisitService) ConfirmVisit(ctx context.Context, caller identity.Caller, visitID uuid.UUID) (*domainvisit.Visit, error) {
	v, err := s.loadVisit(ctx, caller, visitID)
	if err != nil {
		return nil, err
	}
	if err := v.Confirm(); err != nil {
		return nil, err
	}
	if err := s.visitRepo.Save(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to save visit: %w", err)
	}
	s.logger.Info("visit confirmed", zap.String("reference", v.Reference))
	return v, nil
}

// CancelVisit cancels a visit unless a posted invoice is still linked
func (s *VisitService) CancelVisit(ctx context.Context, caller identity.Caller, visitID uuid.UUID) (*domainvisit.Visit, error) {
	v, err := s.loadVisit(ctx, caller, visitID)
	if err != nil {
		return nil, err
	}

	invoices, err := s.invoiceRepo.FindByVisit(ctx, visitID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	hasPosted := false
	for _, inv := range invoices {
		if inv.State == billing.InvoiceStatePosted {
			hasPosted = true
			break
		}
	}

	if err := v.Cancel(hasPosted); err != nil {
		return nil, err
	}
	if err := s.visitRepo.Save(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to save visit: %w", err)
	}
	s.logger.Info("visit cancelled", zap.String("reference", v.Reference))
	return v, nil
}

// HistoryEntry is one visit in the history view
type HistoryEntry struct {
	VisitID     uuid.UUID       `json:"visit_id"`
	Reference   string          `json:"reference"`
	Date        string          `json:"date"`
	Doctor      string          `json:"doctor,omitempty"`
	Notes       string          `json:"notes"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Services    []HistoryLine   `json:"services"`
}

// HistoryLine is one billed item in a history entry
type HistoryLine struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// History returns the visit history for an animal or owner, newest first
func (s *VisitService) History(ctx context.Context, caller identity.Caller, query domainvisit.HistoryQuery) ([]HistoryEntry, error) {
	visits, err := s.visitRepo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search visits: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(visits))
	for _, v := range visits {
		if err := ensureBranchAccess(caller, v.BranchID); err != nil {
			continue
		}
		entry := HistoryEntry{
			VisitID:     v.GetID(),
			Reference:   v.Reference,
			Date:        v.Date.Format("2006-01-02 15:04"),
			Notes:       v.Notes,
			TotalAmount: v.TotalAmount,
		}
		if v.DoctorID != nil {
			if doctor, err := s.doctorRepo.FindByID(ctx, *v.DoctorID); err == nil {
				entry.Doctor = doctor.Name
			}
		}
		for _, line := range v.Lines {
			entry.Services = append(entry.Services, HistoryLine{
				Name:   line.Description,
				Amount: line.Subtotal(),
			})
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
