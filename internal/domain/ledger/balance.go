package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Balance is an opening balance brought forward on an account. It stands
// in for a transaction of the tagged kind and is always posted.
type Balance struct {
	shared.TenantAggregateRoot
	AccountID       uuid.UUID
	TransactionKind TransactionKind
	TransactionDate time.Time
	Reference       string
	Narration       string
	Amount          decimal.Decimal
	BalanceType     EntryType
}

// NewBalance creates an opening balance for a balance sheet account
func NewBalance(
	tenantID uuid.UUID,
	account *Account,
	kind TransactionKind,
	transactionDate time.Time,
	amount decimal.Decimal,
	balanceType EntryType,
) (*Balance, error) {
	if account == nil || account.TenantID != tenantID {
		var id uuid.UUID
		if account != nil {
			id = account.ID
		}
		return nil, &MissingEntityError{Resource: "account", ID: id}
	}
	if !account.AccountType.IsBalanceSheet() {
		return nil, &InvalidAccountTypeError{
			Role:        "opening balance",
			AccountID:   account.ID,
			AccountType: account.AccountType,
			Allowed:     balanceSheetTypes,
		}
	}
	if !kind.IsOpeningBalanceKind() {
		return nil, &InvalidBalanceKindError{Kind: kind}
	}
	if !balanceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_BALANCE_TYPE", "Balance type must be DEBIT or CREDIT")
	}
	if err := checkAmount("balance amount", amount); err != nil {
		return nil, err
	}
	if transactionDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Transaction date is required")
	}

	return &Balance{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		AccountID:           account.ID,
		TransactionKind:     kind,
		TransactionDate:     transactionDate,
		Amount:              amount,
		BalanceType:         balanceType,
	}, nil
}

// WithReference sets the reference and narration of the balance
func (b *Balance) WithReference(reference, narration string) *Balance {
	b.Reference = strings.TrimSpace(reference)
	b.Narration = strings.TrimSpace(narration)
	return b
}

// Entry returns the balance as a clearable entry
func (b *Balance) Entry() ClearableEntry {
	return ClearableEntry{
		ID:              b.ID,
		Type:            AssignedTypeBalance,
		Kind:            b.TransactionKind,
		TenantID:        b.TenantID,
		AccountID:       b.AccountID,
		Reference:       b.Reference,
		Narration:       b.Narration,
		TransactionDate: b.TransactionDate,
		Amount:          b.Amount,
		Side:            b.BalanceType,
		Posted:          true,
	}
}
