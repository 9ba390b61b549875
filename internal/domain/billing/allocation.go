package billing

import (
	"sort"

	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
)

// SortOutstanding orders invoices for allocation: invoice date
// ascending, ties broken by creation time then ID so the order is
// stable across runs.
func SortOutstanding(invoices []*Invoice) {
	sort.SliceStable(invoices, func(i, j int) bool {
		a, b := invoices[i], invoices[j]
		if !a.InvoiceDate.Equal(b.InvoiceDate) {
			return a.InvoiceDate.Before(b.InvoiceDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

// TotalResidual sums the residuals of the given invoices
func TotalResidual(invoices []*Invoice) valueobject.Money {
	total := valueobject.ZeroBDT()
	for _, inv := range invoices {
		total = total.MustAdd(inv.AmountResidual)
	}
	return total
}

// PlanAllocation walks the invoices in their given order and assigns
// min(remaining, residual) to each until the amount is used up. It is a
// pure planning step: no invoice is mutated. The caller must reject
// overpayment before planning; any remainder left after all invoices
// are exhausted is returned for the caller to log.
func PlanAllocation(invoices []*Invoice, amount valueobject.Money) ([]PaymentAllocation, valueobject.Money, error) {
	if !amount.IsPositive() {
		return nil, valueobject.ZeroBDT(), shared.NewValidationError("Payment amount must be greater than zero.")
	}

	var allocations []PaymentAllocation
	remaining := amount
	for _, inv := range invoices {
		if !remaining.IsPositive() {
			break
		}
		if !inv.AmountResidual.IsPositive() {
			continue
		}
		slice := inv.AmountResidual
		if remaining.Amount().LessThan(slice.Amount()) {
			slice = remaining
		}
		allocations = append(allocations, PaymentAllocation{InvoiceID: inv.ID, Amount: slice})
		remaining = remaining.MustSubtract(slice)
	}
	return allocations, remaining, nil
}

// CheckOverpayment fails when the amount exceeds the partner's total
// outstanding residual. Run before any ledger mutation.
func CheckOverpayment(invoices []*Invoice, amount valueobject.Money) error {
	total := TotalResidual(invoices)
	if amount.Amount().GreaterThan(total.Amount()) {
		return shared.NewDomainErrorf(shared.CodeOverpayment,
			"You are trying to pay more (%.2f) than the total unpaid balance (%.2f).",
			amount.Float64(), total.Float64())
	}
	return nil
}
