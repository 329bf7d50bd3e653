package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testEndDate = time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

func daysBefore(n int) time.Time {
	return testEndDate.AddDate(0, 0, -n)
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// testBook builds accounts and transactions for one entity
type testBook struct {
	t        *testing.T
	tenantID uuid.UUID
	accounts Accounts
	poster   *PostingService
}

func newTestBook(t *testing.T) *testBook {
	return &testBook{
		t:        t,
		tenantID: uuid.New(),
		accounts: Accounts{},
		poster:   NewPostingService(WithClock(func() time.Time { return testEndDate })),
	}
}

func (b *testBook) account(accountType AccountType) *Account {
	a, err := NewAccount(b.tenantID, string(accountType)+" account", accountType, valueobject.USD)
	require.NoError(b.t, err)
	b.accounts[a.ID] = a
	return a
}

func (b *testBook) transaction(kind TransactionKind, main *Account, date time.Time) *Transaction {
	tx, err := NewTransaction(b.tenantID, kind, main.ID, date, string(kind)+" narration")
	require.NoError(b.t, err)
	return tx
}

func (b *testBook) line(tx *Transaction, account *Account, amount string) *LineItem {
	item, err := NewLineItem(b.tenantID, account.ID, "line", dec(amount))
	require.NoError(b.t, err)
	require.NoError(b.t, tx.AddLineItem(item))
	return &tx.LineItems[len(tx.LineItems)-1]
}

// posted creates and posts a transaction with a single line item
func (b *testBook) posted(kind TransactionKind, main, lineAccount *Account, amount string, date time.Time) *Transaction {
	tx := b.transaction(kind, main, date)
	b.line(tx, lineAccount, amount)
	_, err := b.poster.Post(tx, b.accounts, nil)
	require.NoError(b.t, err)
	return tx
}

func (b *testBook) balance(account *Account, kind TransactionKind, amount string, balanceType EntryType, date time.Time) *Balance {
	bal, err := NewBalance(b.tenantID, account, kind, date, dec(amount), balanceType)
	require.NoError(b.t, err)
	return bal
}
