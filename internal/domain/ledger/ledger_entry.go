package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LedgerEntry is one side of a posted amount on an account
type LedgerEntry struct {
	shared.BaseEntity
	TenantID        uuid.UUID
	TransactionID   uuid.UUID
	AccountID       uuid.UUID
	LineItemID      *uuid.UUID
	TaxID           *uuid.UUID
	EntryType       EntryType
	Amount          decimal.Decimal
	TransactionDate time.Time
}

func newLedgerEntry(tx *Transaction, accountID uuid.UUID, side EntryType, amount decimal.Decimal) *LedgerEntry {
	return &LedgerEntry{
		BaseEntity:      shared.NewBaseEntity(),
		TenantID:        tx.TenantID,
		TransactionID:   tx.ID,
		AccountID:       accountID,
		EntryType:       side,
		Amount:          amount,
		TransactionDate: tx.TransactionDate,
	}
}

// SumEntries totals debit and credit entries
func SumEntries(entries []*LedgerEntry) (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, e := range entries {
		if e.EntryType == EntryTypeDebit {
			debits = debits.Add(e.Amount)
		} else {
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits
}
