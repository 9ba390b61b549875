package shared

import "context"

// Sequence codes used by the clinic. Each code owns an independent counter.
const (
	SequenceVisit     = "visit"     // VIS00001, VIS00002, ...
	SequenceMicrochip = "microchip" // HT000001, HT000002, ...
	SequenceInvoice   = "invoice"   // INV/2026/00001
	SequencePayment   = "payment"   // PAY/2026/00001
)

// SequenceGenerator allocates gapless-enough document numbers per code.
// Implementations must be safe for concurrent use; the persistence
// implementation takes a row lock on the counter row.
type SequenceGenerator interface {
	Next(ctx context.Context, code string) (string, error)
}
