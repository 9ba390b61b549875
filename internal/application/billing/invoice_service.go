package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vetclinic/backend/internal/domain/billing"
	"github.com/vetclinic/backend/internal/domain/catalog"
	"github.com/vetclinic/backend/internal/domain/clinic"
	"github.com/vetclinic/backend/internal/domain/identity"
	"github.com/vetclinic/backend/internal/domain/shared"
	domainvisit "github.com/vetclinic/backend/internal/domain/visit"
)

// InvoiceService turns a visit's billable lines into a posted invoice.
// Combo test lines suspend generation into a selection step; nothing is
// persisted for the invoice until the selection is resumed.
type InvoiceService struct {
	visitRepo    domainvisit.VisitRepository
	ownerRepo    clinic.OwnerRepository
	serviceRepo  clinic.ServiceRepository
	productRepo  catalog.ProductRepository
	categoryRepo catalog.ProductCategoryRepository
	invoiceRepo  billing.InvoiceRepository
	partnerRepo  billing.BillingPartnerRepository
	accountRepo  billing.AccountRepository
	deliverer    billing.StockDeliverer
	sequences    shared.SequenceGenerator
	logger       *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	visitRepo domainvisit.VisitRepository,
	ownerRepo clinic.OwnerRepository,
	serviceRepo clinic.ServiceRepository,
	productRepo catalog.ProductRepository,
	categoryRepo catalog.ProductCategoryRepository,
	invoiceRepo billing.InvoiceRepository,
	partnerRepo billing.BillingPartnerRepository,
	accountRepo billing.AccountRepository,
	deliverer billing.StockDeliverer,
	sequences shared.SequenceGenerator,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		visitRepo:    visitRepo,
		ownerRepo:    ownerRepo,
		serviceRepo:  serviceRepo,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		invoiceRepo:  invoiceRepo,
		partnerRepo:  partnerRepo,
		accountRepo:  accountRepo,
		deliverer:    deliverer,
		sequences:    sequences,
		logger:       logger,
	}
}

func ensureBranchAccess(caller identity.Caller, branchID *uuid.UUID) error {
	if !caller.IsRestricted() {
		return nil
	}
	if branchID == nil || !caller.CanAccessBranch(*branchID) {
		return shared.ErrForbidden
	}
	return nil
}

// getOrCreatePartner resolves the owner's billing partner, creating one
// on first use.
func (s *InvoiceService) getOrCreatePartner(ctx context.Context, ownerID uuid.UUID) (*billing.BillingPartner, error) {
	partner, err := s.partnerRepo.FindByOwner(ctx, ownerID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up partner: %w", err)
	}
	if partner != nil {
		return partner, nil
	}

	owner, err := s.ownerRepo.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	partner, err = billing.NewBillingPartner(owner.GetID(), owner.Name, owner.ContactNumber, owner.Email)
	if err != nil {
		return nil, err
	}
	if receivable, err := s.accountRepo.FirstByType(ctx, billing.AccountTypeReceivable); err == nil && receivable != nil {
		partner.SetReceivableAccount(receivable.GetID())
	}
	if err := s.partnerRepo.Save(ctx, partner); err != nil {
		return nil, fmt.Errorf("failed to save partner: %w", err)
	}
	s.logger.Info("billing partner created",
		zap.String("partner_id", partner.GetID().String()),
		zap.String("owner_id", ownerID.String()))
	return partner, nil
}

// resolveIncomeAccount walks product override, then category default,
// then the first available income account.
func (s *InvoiceService) resolveIncomeAccount(ctx context.Context, product *catalog.Product, fallback *billing.Account) (uuid.UUID, error) {
	if product != nil {
		if product.IncomeAccountID != nil {
			return *product.IncomeAccountID, nil
		}
		if product.CategoryID != nil {
			category, err := s.categoryRepo.FindByID(ctx, *product.CategoryID)
			if err == nil && category.IncomeAccountID != nil {
				return *category.IncomeAccountID, nil
			}
		}
	}
	if fallback != nil {
		return fallback.GetID(), nil
	}
	name := "Treatment Charge"
	if product != nil {
		name = product.Name
	}
	return uuid.Nil, shared.NewConfigurationErrorf("Please configure an Income Account for product %s.", name)
}

// GenerateInvoice produces an invoice for the visit's billable lines,
// or a pending combo selection when combo test lines are present.
func (s *InvoiceService) GenerateInvoice(ctx context.Context, caller identity.Caller, visitID uuid.UUID) (billing.InvoiceOutcome, error) {
	v, err := s.visitRepo.FindByID(ctx, visitID)
	if err != nil {
		return billing.InvoiceOutcome{}, err
	}
	if err := ensureBranchAccess(caller, v.BranchID); err != nil {
		return billing.InvoiceOutcome{}, err
	}
	return s.generate(ctx, v, false)
}

// CancelInvoice voids an unpaid invoice and rederives the linked
// visit's payment state. A visit with only cancelled invoices can then
// itself be cancelled.
func (s *InvoiceService) CancelInvoice(ctx context.Context, caller identity.Caller, invoiceID uuid.UUID) (*billing.Invoice, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := ensureBranchAccess(caller, inv.BranchID); err != nil {
		return nil, err
	}
	if err := inv.Cancel(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	if inv.VisitID != nil {
		v, err := s.visitRepo.FindByID(ctx, *inv.VisitID)
		if err != nil {
			return nil, fmt.Errorf("failed to load linked visit: %w", err)
		}
		visitInvoices, err := s.invoiceRepo.FindByVisit(ctx, v.GetID())
		if err != nil {
			return nil, fmt.Errorf("failed to reload visit invoices: %w", err)
		}
		total := decimal.Zero
		residual := decimal.Zero
		open := 0
		for _, other := range visitInvoices {
			if other.State == billing.InvoiceStateCancel {
				continue
			}
			open++
			total = total.Add(other.AmountTotal.Amount())
			residual = residual.Add(other.AmountResidual.Amount())
		}
		v.SyncStateWithPayments(domainvisit.DerivePaymentState(open > 0, total, residual))
		if err := s.visitRepo.Save(ctx, v); err != nil {
			return nil, fmt.Errorf("failed to save visit: %w", err)
		}
	}

	s.logger.Info("invoice cancelled", zap.String("invoice", inv.Number))
	return inv, nil
}

// ResumeAfterComboSelection consumes the confirmed component choices,
// appends them as test lines and finishes invoice generation.
func (s *InvoiceService) ResumeAfterComboSelection(ctx context.Context, caller identity.Caller, visitID uuid.UUID, choices []billing.ComboChoice) (billing.InvoiceOutcome, error) {
	v, err := s.visitRepo.FindByID(ctx, visitID)
	if err != nil {
		return billing.InvoiceOutcome{}, err
	}
	if err := ensureBranchAccess(caller, v.BranchID); err != nil {
		return billing.InvoiceOutcome{}, err
	}
	if len(v.PendingComboLines()) == 0 {
		return billing.InvoiceOutcome{}, shared.NewValidationError("Visit has no pending combo selection")
	}

	added := 0
	for _, choice := range choices {
		if choice.Quantity.LessThanOrEqual(decimal.Zero) {
			continue
		}
		product, err := s.productRepo.FindByID(ctx, choice.ProductID)
		if err != nil {
			return billing.InvoiceOutcome{}, err
		}
		if _, err := v.AddComponentLine(choice.ServiceID, product.GetID(), product.Name, choice.Quantity, product.ListPrice); err != nil {
			return billing.InvoiceOutcome{}, err
		}
		added++
	}
	if added > 0 {
		if err := s.visitRepo.Save(ctx, v); err != nil {
			return billing.InvoiceOutcome{}, fmt.Errorf("failed to save visit: %w", err)
		}
		s.logger.Info("combo components added",
			zap.String("reference", v.Reference), zap.Int("count", added))
	}

	return s.generate(ctx, v, true)
}

func (s *InvoiceService) generate(ctx context.Context, v *domainvisit.Visit, comboResolved bool) (billing.InvoiceOutcome, error) {
	existing, err := s.invoiceRepo.FindByVisit(ctx, v.GetID())
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return billing.InvoiceOutcome{}, fmt.Errorf("failed to check invoices: %w", err)
	}
	if len(existing) > 0 {
		return billing.InvoiceOutcome{}, shared.NewValidationError("An invoice already exists for this visit.")
	}
	if v.OwnerID == uuid.Nil {
		return billing.InvoiceOutcome{}, shared.NewValidationError("Please set an owner before creating an invoice.")
	}

	partner, err := s.getOrCreatePartner(ctx, v.OwnerID)
	if err != nil {
		return billing.InvoiceOutcome{}, err
	}

	if !comboResolved {
		if pending := v.PendingComboLines(); len(pending) > 0 {
			selection, err := s.buildComboSelection(ctx, v, pending)
			if err != nil {
				return billing.InvoiceOutcome{}, err
			}
			s.logger.Info("combo test lines detected, selection required",
				zap.String("reference", v.Reference), zap.Int("pending", len(pending)))
			return billing.NeedsSelectionOutcome(selection), nil
		}
	}

	fallbackAccount, err := s.accountRepo.FirstByType(ctx, billing.AccountTypeIncome)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return billing.InvoiceOutcome{}, fmt.Errorf("failed to look up income account: %w", err)
	}

	number, err := s.sequences.Next(ctx, shared.SequenceInvoice)
	if err != nil {
		return billing.InvoiceOutcome{}, fmt.Errorf("failed to allocate invoice number: %w", err)
	}
	invoice, err := billing.NewInvoice(number, partner.GetID(), time.Now(), v.Reference)
	if err != nil {
		return billing.InvoiceOutcome{}, err
	}
	invoice.LinkVisit(v.GetID())
	if v.BranchID != nil {
		invoice.SetBranch(*v.BranchID)
	}

	// percent discounts ride on each line; fixed discounts become
	// a separate negative line below
	lineDiscount := decimal.Zero
	if v.DiscountPercent.GreaterThan(decimal.Zero) {
		lineDiscount = v.DiscountPercent
	}

	for _, line := range v.Lines {
		if !line.IsBillable() {
			s.logger.Warn("skipping non-billable line",
				zap.String("reference", v.Reference),
				zap.String("line_id", line.GetID().String()),
				zap.String("quantity", line.Quantity.String()),
				zap.String("price", line.UnitPrice.String()))
			continue
		}
		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			return billing.InvoiceOutcome{}, err
		}
		accountID, err := s.resolveIncomeAccount(ctx, product, fallbackAccount)
		if err != nil {
			return billing.InvoiceOutcome{}, err
		}
		productID := line.ProductID
		invLine, err := billing.NewInvoiceLine(&productID, line.Description, line.Quantity, line.UnitPrice, lineDiscount, accountID)
		if err != nil {
			return billing.InvoiceOutcome{}, err
		}
		if err := invoice.AddLine(invLine); err != nil {
			return billing.InvoiceOutcome{}, err
		}
	}

	if !v.TreatmentCharge.IsZero() {
		accountID, err := s.resolveIncomeAccount(ctx, nil, fallbackAccount)
		if err != nil {
			return billing.InvoiceOutcome{}, shared.NewConfigurationError("Cannot determine an income account for Treatment Charge.")
		}
		chargeLine, err := billing.NewInvoiceLine(nil, "Treatment Charge", decimal.NewFromInt(1), v.TreatmentCharge, decimal.Zero, accountID)
		if err != nil {
			return billing.InvoiceOutcome{}, err
		}
		if err := invoice.AddLine(chargeLine); err != nil {
			return billing.InvoiceOutcome{}, err
		}
	}

	if v.DiscountFixed.GreaterThan(decimal.Zero) {
		accountID, err := s.resolveIncomeAccount(ctx, nil, fallbackAccount)
		if err != nil {
			return billing.InvoiceOutcome{}, shared.NewConfigurationError("Please configure an Income Account for discounts.")
		}
		discountLine, err := billing.NewInvoiceLine(nil, "Discount (Fixed)", decimal.NewFromInt(1), v.DiscountFixed.Neg(), decimal.Zero, accountID)
		if err != nil {
			return billing.InvoiceOutcome{}, err
		}
		if err := invoice.AddLine(discountLine); err != nil {
			return billing.InvoiceOutcome{}, err
		}
	}

	if len(invoice.Lines) == 0 {
		return billing.InvoiceOutcome{}, shared.NewValidationError("No invoiceable lines found for this visit. To pay previous balances, use the Complete Payment action.")
	}

	if err := invoice.Post(); err != nil {
		return billing.InvoiceOutcome{}, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return billing.InvoiceOutcome{}, fmt.Errorf("failed to save invoice: %w", err)
	}

	if err := v.LinkInvoice(invoice.GetID()); err != nil {
		return billing.InvoiceOutcome{}, err
	}
	v.SyncStateWithPayments(domainvisit.DerivePaymentState(true, invoice.AmountTotal.Amount(), invoice.AmountResidual.Amount()))
	if err := s.visitRepo.Save(ctx, v); err != nil {
		return billing.InvoiceOutcome{}, fmt.Errorf("failed to save visit: %w", err)
	}
	s.logger.Info("invoice posted",
		zap.String("invoice", invoice.Number),
		zap.String("reference", v.Reference),
		zap.String("total", invoice.AmountTotal.String()))

	// delivery is best effort: a failure here never unwinds the invoice
	if err := s.deliverProducts(ctx, v); err != nil {
		s.logger.Warn("product delivery failed, invoice stands",
			zap.String("reference", v.Reference), zap.Error(err))
	}

	return billing.ReadyOutcome(invoice), nil
}

func (s *InvoiceService) buildComboSelection(ctx context.Context, v *domainvisit.Visit, pending []*domainvisit.VisitLine) (*billing.ComboSelection, error) {
	selection := &billing.ComboSelection{VisitID: v.GetID()}
	for _, line := range pending {
		svc, err := s.serviceRepo.FindByID(ctx, line.ServiceID)
		if err != nil {
			return nil, err
		}
		componentIDs := svc.ComponentProductIDs
		if len(componentIDs) == 0 {
			// a combo without configured components offers itself
			componentIDs = []uuid.UUID{line.ProductID}
		}
		for _, productID := range componentIDs {
			product, err := s.productRepo.FindByID(ctx, productID)
			if err != nil {
				return nil, err
			}
			selection.Options = append(selection.Options, billing.ComboComponentOption{
				LineID:         line.GetID(),
				ServiceID:      svc.GetID(),
				ComboProductID: line.ProductID,
				ProductID:      product.GetID(),
				Description:    product.Name,
				Quantity:       line.Quantity,
				UnitPrice:      product.ListPrice,
			})
		}
	}
	return selection, nil
}

// deliverProducts ships undelivered lines and decrements stock. Lot
// numbers are generated for lot-tracked products.
func (s *InvoiceService) deliverProducts(ctx context.Context, v *domainvisit.Visit) error {
	lines := v.DeliverableLines()
	if len(lines) == 0 {
		v.MarkDelivered()
		return s.visitRepo.Save(ctx, v)
	}

	requests := make([]billing.DeliveryRequest, 0, len(lines))
	for _, line := range lines {
		product, err := s.productRepo.FindByID(ctx, line.ProductID)
		if err != nil {
			return err
		}
		req := billing.DeliveryRequest{
			ProductID: product.GetID(),
			Quantity:  line.Quantity,
			Origin:    fmt.Sprintf("Visit %s", v.Reference),
		}
		if product.IsLotTracked() {
			req.LotName = fmt.Sprintf("%s-%s", v.Reference, uuid.New().String()[:8])
		}
		requests = append(requests, req)
	}

	if err := s.deliverer.Deliver(ctx, requests); err != nil {
		return shared.NewDomainErrorf(shared.CodeDeliveryFailure,
			"Failed to process delivery for visit %s: %v", v.Reference, err)
	}

	for _, line := range lines {
		line.MarkDelivered()
	}
	v.MarkDelivered()
	return s.visitRepo.Save(ctx, v)
}
