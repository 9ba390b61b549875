package visit

import (
	"fmt"
	"strings"

	"github.com/vetclinic/backend/internal/domain/shared"
)

// Fields whose writes drive the printed receipt. Rejections are split
// into receipt-related and other fields so the caller gets an
// actionable message.
const (
	FieldLines           = "lines"
	FieldTreatmentCharge = "treatment_charge"
	FieldDiscountPercent = "discount_percent"
	FieldDiscountFixed   = "discount_fixed"
	FieldDate            = "date"
	FieldAnimal          = "animal"
	FieldOwner           = "owner"
	FieldDoctor          = "doctor"
	FieldPaymentMethod   = "payment_method"
)

var receiptRelatedFields = map[string]bool{
	FieldLines:           true,
	FieldTreatmentCharge: true,
	FieldDiscountPercent: true,
	FieldDiscountFixed:   true,
}

// FieldMutationError reports which fields a write attempted to change
// while the visit state forbids it.
type FieldMutationError struct {
	Reference     string
	State         State
	ReceiptFields []string
	OtherFields   []string
}

// NewFieldMutationError classifies the attempted fields and builds the error
func NewFieldMutationError(reference string, state State, fields []string) *FieldMutationError {
	e := &FieldMutationError{Reference: reference, State: state}
	for _, f := range fields {
		if receiptRelatedFields[f] {
			e.ReceiptFields = append(e.ReceiptFields, f)
		} else {
			e.OtherFields = append(e.OtherFields, f)
		}
	}
	return e
}

func (e *FieldMutationError) Error() string {
	if len(e.ReceiptFields) > 0 {
		return fmt.Sprintf(
			"Cannot modify receipt-related fields for visit %s in %s state. Receipt fields attempted: %s. Only notes and latest_payment_amount can be updated.",
			e.Reference, e.State, strings.Join(e.ReceiptFields, ", "))
	}
	return fmt.Sprintf(
		"Cannot modify visit %s in %s state. Non-receipt fields attempted: %s. Only notes and latest_payment_amount can be updated.",
		e.Reference, e.State, strings.Join(e.OtherFields, ", "))
}

// Unwrap exposes the state transition error code for errors.As matching
func (e *FieldMutationError) Unwrap() error {
	return shared.NewDomainError(shared.CodeStateTransition, e.Error())
}
