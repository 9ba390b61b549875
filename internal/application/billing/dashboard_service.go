package billing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vetclinic/backend/internal/domain/billing"
	"github.com/vetclinic/backend/internal/domain/identity"
	domainvisit "github.com/vetclinic/backend/internal/domain/visit"
)

// TotalsCache caches computed dashboard totals. The redis-backed
// implementation lives in infrastructure/cache.
type TotalsCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// BranchTotals is the per-branch income split by payment method
type BranchTotals struct {
	BranchID uuid.UUID       `json:"branch_id"`
	Cash     decimal.Decimal `json:"cash"`
	Bank     decimal.Decimal `json:"bank"`
	Online   decimal.Decimal `json:"online"`
	Total    decimal.Decimal `json:"total"`
	Discount decimal.Decimal `json:"discount"`
	Invoices int             `json:"invoices"`
}

// DashboardService aggregates posted invoices into per-branch totals,
// filtered by the caller's allowed branches.
type DashboardService struct {
	invoiceRepo billing.InvoiceRepository
	visitRepo   domainvisit.VisitRepository
	cache       TotalsCache
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	invoiceRepo billing.InvoiceRepository,
	visitRepo domainvisit.VisitRepository,
	cache TotalsCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		invoiceRepo: invoiceRepo,
		visitRepo:   visitRepo,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// cacheKey is scoped by the caller's branch set rather than the user,
// so a changed branch restriction never serves totals cached under the
// old scope.
func cacheKey(caller identity.Caller, from, to time.Time) string {
	scope := "all"
	if caller.IsRestricted() {
		ids := make([]string, len(caller.AllowedBranchIDs))
		for i, id := range caller.AllowedBranchIDs {
			ids[i] = id.String()
		}
		sort.Strings(ids)
		scope = strings.Join(ids, ",")
	}
	return fmt.Sprintf("dashboard:totals:%s:%s:%s",
		scope, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

// TotalsByBranch computes per-branch cash/bank/online totals over the
// posted invoices in the date window. Restricted callers only see
// totals for their allowed branches.
func (s *DashboardService) TotalsByBranch(ctx context.Context, caller identity.Caller, from, to time.Time) ([]BranchTotals, error) {
	key := cacheKey(caller, from, to)
	if s.cache != nil {
		var cached []BranchTotals
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	invoices, err := s.invoiceRepo.FindPostedBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}
	invoices = billing.FilterByAllowedBranches(invoices, caller)

	byBranch := make(map[uuid.UUID]*BranchTotals)
	var order []uuid.UUID
	for _, inv := range invoices {
		branchID := uuid.Nil
		if inv.BranchID != nil {
			branchID = *inv.BranchID
		}
		totals, ok := byBranch[branchID]
		if !ok {
			totals = &BranchTotals{
				BranchID: branchID,
				Cash:     decimal.Zero,
				Bank:     decimal.Zero,
				Online:   decimal.Zero,
				Total:    decimal.Zero,
				Discount: decimal.Zero,
			}
			byBranch[branchID] = totals
			order = append(order, branchID)
		}

		method := domainvisit.PaymentMethodCash
		discount := decimal.Zero
		if inv.VisitID != nil {
			if v, err := s.visitRepo.FindByID(ctx, *inv.VisitID); err == nil {
				method = v.PaymentMethod
				// discount granted on the visit
				discount = v.Subtotal.Add(v.TreatmentCharge).Sub(v.TotalAmount)
			}
		}

		amount := inv.AmountTotal.Amount()
		switch method {
		case domainvisit.PaymentMethodBank:
			totals.Bank = totals.Bank.Add(amount)
		case domainvisit.PaymentMethodOnline:
			totals.Online = totals.Online.Add(amount)
		default:
			totals.Cash = totals.Cash.Add(amount)
		}
		totals.Total = totals.Total.Add(amount)
		totals.Discount = totals.Discount.Add(discount)
		totals.Invoices++
	}

	result := make([]BranchTotals, 0, len(order))
	for _, id := range order {
		result = append(result, *byBranch[id])
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard totals", zap.Error(err))
		}
	}
	return result, nil
}
