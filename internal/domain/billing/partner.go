package billing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vetclinic/backend/internal/domain/shared"
	"github.com/vetclinic/backend/internal/domain/shared/valueobject"
)

// BillingPartner is the ledger-side identity of an owner. Invoices and
// payments hang off the partner, not the owner record itself; a partner
// is created lazily the first time an owner is invoiced.
type BillingPartner struct {
	shared.BaseAggregateRoot
	OwnerID             uuid.UUID
	Name                string
	Phone               valueobject.Phone
	Email               string
	ReceivableAccountID *uuid.UUID
}

// NewBillingPartner creates a partner record for an owner
func NewBillingPartner(ownerID uuid.UUID, name string, phone valueobject.Phone, email string) (*BillingPartner, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewValidationError("Billing partner requires an owner")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Billing partner name cannot be empty")
	}
	return &BillingPartner{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OwnerID:           ownerID,
		Name:              name,
		Phone:             phone,
		Email:             email,
	}, nil
}

// SetReceivableAccount configures the partner's receivable account
func (p *BillingPartner) SetReceivableAccount(accountID uuid.UUID) {
	p.ReceivableAccountID = &accountID
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// RequireReceivableAccount returns the receivable account or a
// configuration error when none is set.
func (p *BillingPartner) RequireReceivableAccount() (uuid.UUID, error) {
	if p.ReceivableAccountID == nil {
		return uuid.Nil, shared.NewConfigurationErrorf(
			"Partner %s has no receivable account configured.", p.Name)
	}
	return *p.ReceivableAccountID, nil
}
