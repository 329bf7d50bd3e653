package ledger

import (
	"strings"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/openledger/backend/internal/domain/shared/valueobject"
)

// Account is a ledger account of the entity's chart of accounts.
// Its type is fixed at creation.
type Account struct {
	shared.TenantAggregateRoot
	Name        string
	Code        string
	AccountType AccountType
	Currency    valueobject.Currency
	Description string
}

// NewAccount creates a new account
func NewAccount(tenantID uuid.UUID, name string, accountType AccountType, currency valueobject.Currency) (*Account, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Entity ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot exceed 200 characters")
	}
	if !accountType.IsValid() {
		return nil, &InvalidAccountTypeError{
			Role:        "account",
			AccountType: accountType,
			Allowed:     AllAccountTypes(),
		}
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	return &Account{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		AccountType:         accountType,
		Currency:            currency,
	}, nil
}

// SetCode sets the account code
func (a *Account) SetCode(code string) {
	a.Code = strings.TrimSpace(code)
	a.Touch()
}

// SetDescription sets the account description
func (a *Account) SetDescription(description string) {
	a.Description = description
	a.Touch()
}

// Rename changes the display name. The type cannot be changed.
func (a *Account) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	a.Name = name
	a.Touch()
	a.IncrementVersion()
	return nil
}

// Accounts is an in-memory lookup of resolved accounts keyed by ID
type Accounts map[uuid.UUID]*Account

// NewAccounts indexes accounts by ID
func NewAccounts(accounts ...*Account) Accounts {
	out := make(Accounts, len(accounts))
	for _, a := range accounts {
		out[a.ID] = a
	}
	return out
}

// Resolve returns the account owned by the tenant or a MissingEntityError
func (m Accounts) Resolve(tenantID, id uuid.UUID) (*Account, error) {
	a, ok := m[id]
	if !ok || a.TenantID != tenantID {
		return nil, &MissingEntityError{Resource: "account", ID: id}
	}
	return a, nil
}
