package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AccountFilter defines filtering options for account queries
type AccountFilter struct {
	shared.Filter
	AccountTypes []AccountType
}

// TransactionFilter defines filtering options for transaction queries
type TransactionFilter struct {
	shared.Filter
	AccountID *uuid.UUID
	Kinds     []TransactionKind
	Posted    *bool
	FromDate  *time.Time
	ToDate    *time.Time
}

// BalanceFilter defines filtering options for opening balance queries
type BalanceFilter struct {
	AccountID   *uuid.UUID
	BalanceType *EntryType
	ToDate      *time.Time
}

// AccountRepository defines the interface for account persistence
type AccountRepository interface {
	// FindByIDForTenant finds an account by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)

	// FindByIDs finds the accounts with the given IDs for a tenant
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*Account, error)

	// FindAllForTenant lists accounts with filtering and returns the total count
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter AccountFilter) ([]*Account, int64, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *Account) error
}

// TransactionRepository defines the interface for transaction persistence.
// Loaded transactions always carry their line items.
type TransactionRepository interface {
	// FindByIDForTenant finds a transaction by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Transaction, error)

	// FindByIDForUpdate finds a transaction and locks its row until the
	// surrounding unit of work ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Transaction, error)

	// FindAllForTenant lists transactions with filtering and returns the total count
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter TransactionFilter) ([]*Transaction, int64, error)

	// ListBy returns every transaction matching the filter, ignoring pagination
	ListBy(ctx context.Context, tenantID uuid.UUID, filter TransactionFilter) ([]*Transaction, error)

	// Save creates or updates a transaction and replaces its line items
	Save(ctx context.Context, tx *Transaction) error
}

// BalanceRepository defines the interface for opening balance persistence
type BalanceRepository interface {
	// FindByIDForTenant finds a balance by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Balance, error)

	// FindByIDForUpdate finds a balance and locks its row
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Balance, error)

	// ListBy returns every balance matching the filter
	ListBy(ctx context.Context, tenantID uuid.UUID, filter BalanceFilter) ([]*Balance, error)

	// Save creates or updates a balance
	Save(ctx context.Context, balance *Balance) error
}

// AssignmentRepository defines the interface for assignment persistence.
// Cleared amounts are always aggregated from the stored rows.
type AssignmentRepository interface {
	// FindByIDForTenant finds an assignment by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Assignment, error)

	// Insert persists a new assignment
	Insert(ctx context.Context, assignment *Assignment) error

	// Delete removes an assignment
	Delete(ctx context.Context, assignment *Assignment) error

	// SumAssignedTo sums assignments against an entry, optionally only
	// those dated on or before asOf
	SumAssignedTo(ctx context.Context, tenantID, assignedID uuid.UUID, asOf *time.Time) (decimal.Decimal, error)

	// SumAssignedBy sums assignments made by a clearing transaction
	SumAssignedBy(ctx context.Context, tenantID, transactionID uuid.UUID) (decimal.Decimal, error)

	// ListByAssigned returns assignments against any of the entries
	ListByAssigned(ctx context.Context, tenantID uuid.UUID, assignedIDs []uuid.UUID) ([]*Assignment, error)

	// ListByTransaction returns assignments made by a clearing transaction
	ListByTransaction(ctx context.Context, tenantID, transactionID uuid.UUID) ([]*Assignment, error)
}

// LedgerEntryRepository defines the interface for ledger entry persistence
type LedgerEntryRepository interface {
	// InsertBatch persists the entries of one posting
	InsertBatch(ctx context.Context, entries []*LedgerEntry) error

	// ListByTransaction returns the entries of a transaction
	ListByTransaction(ctx context.Context, tenantID, transactionID uuid.UUID) ([]*LedgerEntry, error)

	// SumByAccount totals debits and credits posted to an account up to asOf
	SumByAccount(ctx context.Context, tenantID, accountID uuid.UUID, asOf time.Time) (debits, credits decimal.Decimal, err error)
}

// TaxRepository defines the interface for tax persistence
type TaxRepository interface {
	// FindByIDForTenant finds a tax by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Tax, error)

	// FindByIDs finds the taxes with the given IDs for a tenant
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*Tax, error)

	// FindAllForTenant lists every tax of a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]*Tax, error)

	// Save creates or updates a tax
	Save(ctx context.Context, tax *Tax) error
}

// UnitOfWork runs repository calls atomically. Repositories used inside fn
// with the provided context join the unit of work.
type UnitOfWork interface {
	// Do runs fn in a read-write transaction, rolling back on any error
	Do(ctx context.Context, fn func(ctx context.Context) error) error

	// Read runs fn against a single consistent read snapshot
	Read(ctx context.Context, fn func(ctx context.Context) error) error
}
