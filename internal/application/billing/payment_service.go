package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vetclinic/backend/internal/domain/billing"
	"github.com/vetclinic/backend/internal/domain/identity"
	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
	domainvisit "github.com/vetclinic/backend/internal/domain/visit"
)

// PaymentService registers payments against an owner's outstanding
// invoices, oldest first. Overpayment is rejected before anything is
// written; once validation passes, the amount is recorded on the visit
// unconditionally so payment history survives partial failures further
// down.
type PaymentService struct {
	visitRepo   domainvisit.VisitRepository
	invoiceRepo billing.InvoiceRepository
	paymentRepo billing.PaymentRepository
	partnerRepo billing.BillingPartnerRepository
	journalRepo billing.JournalRepository
	accountRepo billing.AccountRepository
	ledger      billing.Ledger
	sequences   shared.SequenceGenerator
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	visitRepo domainvisit.VisitRepository,
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	partnerRepo billing.BillingPartnerRepository,
	journalRepo billing.JournalRepository,
	accountRepo billing.AccountRepository,
	ledger billing.Ledger,
	sequences shared.SequenceGenerator,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		visitRepo:   visitRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		partnerRepo: partnerRepo,
		journalRepo: journalRepo,
		accountRepo: accountRepo,
		ledger:      ledger,
		sequences:   sequences,
		logger:      logger,
	}
}

// ApplyPaymentRequest carries the payment input. When JournalID is
// empty the first journal matching the method is used.
type ApplyPaymentRequest struct {
	VisitID   uuid.UUID       `json:"visit_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required"`
	JournalID *uuid.UUID      `json:"journal_id"`
}

// ApplyPayment validates, allocates and records a payment for the
// visit's owner across all their outstanding invoices.
func (s *PaymentService) ApplyPayment(ctx context.Context, caller identity.Caller, req ApplyPaymentRequest) (*billing.Payment, error) {
	amount := valueobject.NewMoneyBDT(req.Amount)
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Payment amount must be greater than zero.")
	}
	method := domainvisit.PaymentMethod(req.Method)
	if !method.IsValid() {
		return nil, shared.NewValidationError("Payment method must be one of: cash, bank, online")
	}

	v, err := s.visitRepo.FindByID(ctx, req.VisitID)
	if err != nil {
		return nil, err
	}
	if err := ensureBranchAccess(caller, v.BranchID); err != nil {
		return nil, err
	}
	if !v.HasInvoice() {
		return nil, shared.NewValidationError("No invoice found for this visit.")
	}

	partner, err := s.partnerRepo.FindByOwner(ctx, v.OwnerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewValidationError("Visit owner has no linked partner. Cannot process payment.")
		}
		return nil, fmt.Errorf("failed to load partner: %w", err)
	}
	if _, err := partner.RequireReceivableAccount(); err != nil {
		return nil, err
	}

	journal, err := s.resolveJournal(ctx, method, req.JournalID)
	if err != nil {
		return nil, err
	}
	var journalAccount *billing.Account
	if journal.DefaultAccountID != nil {
		journalAccount, err = s.accountRepo.FindByID(ctx, *journal.DefaultAccountID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("failed to load journal account: %w", err)
		}
	}
	if err := journal.ValidateForPayments(journalAccount); err != nil {
		return nil, err
	}

	invoices, err := s.invoiceRepo.FindOutstandingByPartner(ctx, partner.GetID())
	if err != nil {
		return nil, fmt.Errorf("failed to load outstanding invoices: %w", err)
	}
	if len(invoices) == 0 {
		return nil, shared.NewValidationError("No unpaid invoices found for this owner.")
	}
	billing.SortOutstanding(invoices)

	// overpayment is rejected before any mutation
	if err := billing.CheckOverpayment(invoices, amount); err != nil {
		return nil, err
	}

	// the amount lands on the visit before allocation so history
	// survives even when allocation partially fails
	if err := v.RecordPayment(req.Amount, method); err != nil {
		return nil, err
	}
	if err := s.visitRepo.Save(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to record payment on visit: %w", err)
	}

	allocations, remainder, err := billing.PlanAllocation(invoices, amount)
	if err != nil {
		return nil, err
	}
	if remainder.IsPositive() {
		s.logger.Warn("payment amount not fully allocated",
			zap.String("reference", v.Reference),
			zap.String("remainder", remainder.String()))
	}

	number, err := s.sequences.Next(ctx, shared.SequencePayment)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate payment number: %w", err)
	}
	payment, err := billing.NewPayment(number, partner.GetID(), journal.GetID(), amount)
	if err != nil {
		return nil, err
	}
	payment.LinkVisit(v.GetID())

	byID := make(map[uuid.UUID]*billing.Invoice, len(invoices))
	for _, inv := range invoices {
		byID[inv.ID] = inv
	}

	if err := s.registerStructured(ctx, v, allocations, byID, journal, partner); err != nil {
		s.logger.Warn("structured payment registration failed, falling back to manual entries",
			zap.String("reference", v.Reference), zap.Error(err))
		reconciled := s.registerManual(ctx, v, allocations, byID, journal, partner)
		payment.MarkManual(reconciled)
	}

	for _, alloc := range allocations {
		inv := byID[alloc.InvoiceID]
		if err := inv.ApplyPayment(alloc.Amount); err != nil {
			return nil, err
		}
		if err := s.invoiceRepo.Save(ctx, inv); err != nil {
			return nil, fmt.Errorf("failed to save invoice: %w", err)
		}
	}

	payment.RecordAllocations(allocations)
	payment.AddDomainEvent(billing.NewPaymentRegisteredEvent(
		payment.GetID(), payment.Number, partner.GetID(), amount, payment.Manual))
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	if err := s.resyncAllocatedVisits(ctx, v, allocations, byID); err != nil {
		return nil, err
	}

	s.logger.Info("payment registered",
		zap.String("payment", payment.Number),
		zap.String("reference", v.Reference),
		zap.String("amount", amount.String()),
		zap.Bool("manual", payment.Manual))
	return payment, nil
}

func (s *PaymentService) resolveJournal(ctx context.Context, method domainvisit.PaymentMethod, journalID *uuid.UUID) (*billing.Journal, error) {
	if journalID != nil {
		return s.journalRepo.FindByID(ctx, *journalID)
	}
	journalType := billing.JournalTypeCash
	if method == domainvisit.PaymentMethodBank || method == domainvisit.PaymentMethodOnline {
		journalType = billing.JournalTypeBank
	}
	journal, err := s.journalRepo.FirstByType(ctx, journalType)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewConfigurationErrorf("No %s journal configured.", journalType)
		}
		return nil, err
	}
	return journal, nil
}

// registerStructured runs the primary registration path. The first
// failure aborts the whole structured attempt so the manual fallback
// can take over from a clean slate.
func (s *PaymentService) registerStructured(
	ctx context.Context,
	v *domainvisit.Visit,
	allocations []billing.PaymentAllocation,
	byID map[uuid.UUID]*billing.Invoice,
	journal *billing.Journal,
	partner *billing.BillingPartner,
) error {
	for _, alloc := range allocations {
		inv := byID[alloc.InvoiceID]
		if err := s.ledger.RegisterPayment(ctx, inv, alloc.Amount, journal, partner); err != nil {
			return err
		}
		s.logger.Debug("payment slice registered",
			zap.String("invoice", inv.Number),
			zap.String("amount", alloc.Amount.String()))
	}
	return nil
}

// registerManual posts a balanced debit/credit pair per invoice and
// attempts reconciliation. Reconciliation failures are logged and do
// not fail the payment; the returned flag reports whether every entry
// reconciled.
func (s *PaymentService) registerManual(
	ctx context.Context,
	v *domainvisit.Visit,
	allocations []billing.PaymentAllocation,
	byID map[uuid.UUID]*billing.Invoice,
	journal *billing.Journal,
	partner *billing.BillingPartner,
) bool {
	receivableID, err := partner.RequireReceivableAccount()
	if err != nil {
		s.logger.Error("manual fallback impossible without receivable account",
			zap.String("reference", v.Reference), zap.Error(err))
		return false
	}

	allReconciled := true
	for _, alloc := range allocations {
		inv := byID[alloc.InvoiceID]
		reference := fmt.Sprintf("Payment for %s - Invoice %s", v.Reference, inv.Number)
		entry := billing.ManualEntry{
			Reference: reference,
			JournalID: journal.GetID(),
			InvoiceID: inv.ID,
			Lines: []billing.ManualEntryLine{
				{
					Description: reference,
					AccountID:   receivableID,
					PartnerID:   partner.GetID(),
					Credit:      alloc.Amount,
					Debit:       valueobject.ZeroBDT(),
				},
				{
					Description: fmt.Sprintf("Cash/Bank for %s - Invoice %s", v.Reference, inv.Number),
					AccountID:   *journal.DefaultAccountID,
					PartnerID:   partner.GetID(),
					Debit:       alloc.Amount,
					Credit:      valueobject.ZeroBDT(),
				},
			},
		}
		if err := s.ledger.PostManualEntry(ctx, entry); err != nil {
			s.logger.Error("manual entry failed",
				zap.String("invoice", inv.Number), zap.Error(err))
			allReconciled = false
			continue
		}
		if err := s.ledger.Reconcile(ctx, inv.ID, reference); err != nil {
			s.logger.Error("fallback reconciliation failed",
				zap.String("invoice", inv.Number),
				zap.String("error_code", shared.CodeReconciliation),
				zap.Error(err))
			allReconciled = false
		}
	}
	return allReconciled
}

// resyncAllocatedVisits rederives payment state for every visit touched
// by the allocation. Oldest-first allocation can settle invoices raised
// by the owner's other visits, and those must move too, not just the
// visit the payment arrived on.
func (s *PaymentService) resyncAllocatedVisits(
	ctx context.Context,
	paying *domainvisit.Visit,
	allocations []billing.PaymentAllocation,
	byID map[uuid.UUID]*billing.Invoice,
) error {
	visits := map[uuid.UUID]*domainvisit.Visit{paying.GetID(): paying}
	for _, alloc := range allocations {
		inv := byID[alloc.InvoiceID]
		if inv.VisitID == nil {
			continue
		}
		if _, seen := visits[*inv.VisitID]; seen {
			continue
		}
		other, err := s.visitRepo.FindByID(ctx, *inv.VisitID)
		if err != nil {
			return fmt.Errorf("failed to load visit for invoice %s: %w", inv.Number, err)
		}
		visits[*inv.VisitID] = other
	}
	for _, v := range visits {
		if err := s.resyncVisit(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// resyncVisit rederives the visit's payment state from its own invoices
// and moves the state machine to match.
func (s *PaymentService) resyncVisit(ctx context.Context, v *domainvisit.Visit) error {
	visitInvoices, err := s.invoiceRepo.FindByVisit(ctx, v.GetID())
	if err != nil {
		return fmt.Errorf("failed to reload visit invoices: %w", err)
	}
	total := decimal.Zero
	residual := decimal.Zero
	open := 0
	for _, inv := range visitInvoices {
		if inv.State == billing.InvoiceStateCancel {
			continue
		}
		open++
		total = total.Add(inv.AmountTotal.Amount())
		residual = residual.Add(inv.AmountResidual.Amount())
	}
	v.SyncStateWithPayments(domainvisit.DerivePaymentState(open > 0, total, residual))
	if err := s.visitRepo.Save(ctx, v); err != nil {
		return fmt.Errorf("failed to save visit: %w", err)
	}
	return nil
}

// OwnerUnpaidBalance sums the residuals of the owner's outstanding invoices
func (s *PaymentService) OwnerUnpaidBalance(ctx context.Context, ownerID uuid.UUID) (decimal.Decimal, error) {
	partner, err := s.partnerRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	invoices, err := s.invoiceRepo.FindOutstandingByPartner(ctx, partner.GetID())
	if err != nil {
		return decimal.Zero, err
	}
	return billing.TotalResidual(invoices).Amount(), nil
}
