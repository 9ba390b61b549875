package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
)

func postedInvoice(t *testing.T, number string, date time.Time, amount int64) *Invoice {
	t.Helper()
	inv, err := NewInvoice(number, uuid.New(), date, "VIS00001")
	require.NoError(t, err)
	line, err := NewInvoiceLine(nil, "Consultation", decimal.NewFromInt(1), decimal.NewFromInt(amount), decimal.Zero, uuid.New())
	require.NoError(t, err)
	require.NoError(t, inv.AddLine(line))
	require.NoError(t, inv.Post())
	return inv
}

func TestPlanAllocation_OldestFirst(t *testing.T) {
	day := 24 * time.Hour
	older := postedInvoice(t, "INV00001", time.Now().Add(-3*day), 300)
	newer := postedInvoice(t, "INV00002", time.Now().Add(-1*day), 200)

	invoices := []*Invoice{newer, older}
	SortOutstanding(invoices)
	require.Equal(t, older.Number, invoices[0].Number)

	amount := valueobject.NewMoneyBDT(decimal.NewFromInt(400))
	require.NoError(t, CheckOverpayment(invoices, amount))

	allocations, remainder, err := PlanAllocation(invoices, amount)
	require.NoError(t, err)
	require.Len(t, allocations, 2)
	assert.Equal(t, older.ID, allocations[0].InvoiceID)
	assert.True(t, allocations[0].Amount.Amount().Equal(decimal.NewFromInt(300)))
	assert.Equal(t, newer.ID, allocations[1].InvoiceID)
	assert.True(t, allocations[1].Amount.Amount().Equal(decimal.NewFromInt(100)))
	assert.True(t, remainder.IsZero())

	// applying the plan leaves 100 residual on the newer invoice
	for _, alloc := range allocations {
		for _, inv := range invoices {
			if inv.ID == alloc.InvoiceID {
				require.NoError(t, inv.ApplyPayment(alloc.Amount))
			}
		}
	}
	assert.Equal(t, InvoicePaid, older.PaymentState)
	assert.Equal(t, InvoicePartial, newer.PaymentState)
	assert.True(t, newer.AmountResidual.Amount().Equal(decimal.NewFromInt(100)))
}

func TestCheckOverpayment(t *testing.T) {
	day := 24 * time.Hour
	invoices := []*Invoice{
		postedInvoice(t, "INV00003", time.Now().Add(-2*day), 300),
		postedInvoice(t, "INV00004", time.Now().Add(-1*day), 200),
	}

	// exactly the outstanding balance is fine
	assert.NoError(t, CheckOverpayment(invoices, valueobject.NewMoneyBDT(decimal.NewFromInt(500))))

	err := CheckOverpayment(invoices, valueobject.NewMoneyBDT(decimal.NewFromInt(600)))
	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, shared.CodeOverpayment))

	// the failed check mutated nothing
	for _, inv := range invoices {
		assert.True(t, inv.AmountResidual.Equals(inv.AmountTotal))
	}
}

func TestPlanAllocation_FullSettlement(t *testing.T) {
	day := 24 * time.Hour
	invoices := []*Invoice{
		postedInvoice(t, "INV00005", time.Now().Add(-2*day), 300),
		postedInvoice(t, "INV00006", time.Now().Add(-1*day), 200),
	}
	SortOutstanding(invoices)

	allocations, remainder, err := PlanAllocation(invoices, valueobject.NewMoneyBDT(decimal.NewFromInt(500)))
	require.NoError(t, err)
	require.Len(t, allocations, 2)
	assert.True(t, remainder.IsZero())
}

func TestPlanAllocation_SkipsSettledAndRejectsZero(t *testing.T) {
	paid := postedInvoice(t, "INV00007", time.Now(), 100)
	require.NoError(t, paid.ApplyPayment(valueobject.NewMoneyBDT(decimal.NewFromInt(100))))
	open := postedInvoice(t, "INV00008", time.Now(), 250)

	allocations, remainder, err := PlanAllocation([]*Invoice{paid, open}, valueobject.NewMoneyBDT(decimal.NewFromInt(200)))
	require.NoError(t, err)
	require.Len(t, allocations, 1)
	assert.Equal(t, open.ID, allocations[0].InvoiceID)
	assert.True(t, remainder.IsZero())

	_, _, err = PlanAllocation([]*Invoice{open}, valueobject.ZeroBDT())
	assert.Error(t, err)
}

func TestSortOutstanding_TieBreak(t *testing.T) {
	date := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	first := postedInvoice(t, "INV00009", date, 100)
	time.Sleep(2 * time.Millisecond)
	second := postedInvoice(t, "INV00010", date, 100)

	invoices := []*Invoice{second, first}
	SortOutstanding(invoices)
	assert.Equal(t, first.Number, invoices[0].Number)
}
