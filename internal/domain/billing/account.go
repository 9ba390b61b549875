package billing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/vetclinic/backend/internal/domain/shared"
)

// AccountType classifies ledger accounts. Payments may only move through
// journals whose default account is a cash-equivalent asset.
type AccountType string

const (
	AccountTypeIncome     AccountType = "income"
	AccountTypeAssetCash  AccountType = "asset_cash"
	AccountTypeReceivable AccountType = "asset_receivable"
	AccountTypeExpense    AccountType = "expense"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeIncome, AccountTypeAssetCash, AccountTypeReceivable, AccountTypeExpense:
		return true
	}
	return false
}

// Account is a ledger account
type Account struct {
	shared.BaseAggregateRoot
	Code   string
	Name   string
	Type   AccountType
	Active bool
}

// NewAccount creates a new ledger account
func NewAccount(code, name string, accountType AccountType) (*Account, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError("Account code cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Account name cannot be empty")
	}
	if !accountType.IsValid() {
		return nil, shared.NewValidationError("Invalid account type")
	}
	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Type:              accountType,
		Active:            true,
	}, nil
}

// JournalType distinguishes how money physically arrives
type JournalType string

const (
	JournalTypeCash JournalType = "cash"
	JournalTypeBank JournalType = "bank"
)

// IsValid checks if the journal type is valid
func (t JournalType) IsValid() bool {
	return t == JournalTypeCash || t == JournalTypeBank
}

// Journal is a payment book backed by a default cash or bank account
type Journal struct {
	shared.BaseAggregateRoot
	Name             string
	Type             JournalType
	DefaultAccountID *uuid.UUID
	Active           bool
}

// NewJournal creates a new journal
func NewJournal(name string, journalType JournalType, defaultAccountID uuid.UUID) (*Journal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Journal name cannot be empty")
	}
	if !journalType.IsValid() {
		return nil, shared.NewValidationError("Journal type must be 'cash' or 'bank'")
	}
	j := &Journal{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Type:              journalType,
		Active:            true,
	}
	if defaultAccountID != uuid.Nil {
		j.DefaultAccountID = &defaultAccountID
	}
	return j, nil
}

// ValidateForPayments checks the journal is usable for registering a
// payment: it needs a default account of the cash-equivalent type.
func (j *Journal) ValidateForPayments(defaultAccount *Account) error {
	if j.DefaultAccountID == nil || defaultAccount == nil {
		return shared.NewConfigurationError("Selected journal has no default account configured.")
	}
	if defaultAccount.Type != AccountTypeAssetCash {
		return shared.NewConfigurationErrorf(
			"Journal %s has an incorrect default account type. Expected '%s', found '%s'. Please configure the correct account.",
			j.Name, AccountTypeAssetCash, defaultAccount.Type)
	}
	return nil
}
