package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clearingFixture struct {
	b          *testBook
	receivable *Account
	bank       *Account
	revenue    *Account
	invoice    *Transaction
	receipt    *Transaction
}

func newClearingFixture(t *testing.T) *clearingFixture {
	b := newTestBook(t)
	f := &clearingFixture{
		b:          b,
		receivable: b.account(AccountTypeReceivable),
		bank:       b.account(AccountTypeBank),
		revenue:    b.account(AccountTypeOperatingRevenue),
	}
	f.invoice = b.posted(KindClientInvoice, f.receivable, f.revenue, "100", daysBefore(10))
	f.receipt = b.posted(KindClientReceipt, f.receivable, f.bank, "60", daysBefore(5))
	return f
}

func emptyState() ClearingState {
	return ClearingState{
		AssignedCleared: decimal.Zero,
		ClearingUsed:    decimal.Zero,
		ClearingCleared: decimal.Zero,
		AssignedUsed:    decimal.Zero,
	}
}

func TestNewAssignment_Success(t *testing.T) {
	f := newClearingFixture(t)

	a, err := NewAssignment(f.b.tenantID, f.receipt, f.invoice.Entry(), dec("40"), daysBefore(1), emptyState())
	require.NoError(t, err)
	assert.Equal(t, f.receipt.ID, a.TransactionID)
	assert.Equal(t, f.invoice.ID, a.AssignedID)
	assert.Equal(t, AssignedTypeTransaction, a.AssignedType)
	assert.Equal(t, f.receivable.ID, a.AccountID)
	require.Len(t, a.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeAssignmentCreated, a.GetDomainEvents()[0].EventType())

	a.Remove()
	assert.Equal(t, EventTypeAssignmentRemoved, a.GetDomainEvents()[1].EventType())
}

func TestNewAssignment_Bounds(t *testing.T) {
	f := newClearingFixture(t)

	t.Run("exceeds clearing balance", func(t *testing.T) {
		state := emptyState()
		state.ClearingUsed = dec("30")
		_, err := NewAssignment(f.b.tenantID, f.receipt, f.invoice.Entry(), dec("31"), daysBefore(1), state)
		var balErr *InsufficientBalanceError
		require.ErrorAs(t, err, &balErr)
		assert.Equal(t, f.receipt.ID, balErr.EntryID)
		assert.True(t, dec("30").Equal(balErr.Available))
	})

	t.Run("exceeds outstanding amount", func(t *testing.T) {
		state := emptyState()
		state.AssignedCleared = dec("80")
		_, err := NewAssignment(f.b.tenantID, f.receipt, f.invoice.Entry(), dec("21"), daysBefore(1), state)
		var balErr *InsufficientBalanceError
		require.ErrorAs(t, err, &balErr)
		assert.Equal(t, f.invoice.ID, balErr.EntryID)
	})

	t.Run("exact remaining amount is allowed", func(t *testing.T) {
		state := emptyState()
		state.AssignedCleared = dec("80")
		_, err := NewAssignment(f.b.tenantID, f.receipt, f.invoice.Entry(), dec("20"), daysBefore(1), state)
		assert.NoError(t, err)
	})

	t.Run("non positive amount", func(t *testing.T) {
		_, err := NewAssignment(f.b.tenantID, f.receipt, f.invoice.Entry(), dec("0"), daysBefore(1), emptyState())
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestNewAssignment_Preconditions(t *testing.T) {
	f := newClearingFixture(t)
	b := f.b

	t.Run("different account", func(t *testing.T) {
		otherReceivable := b.account(AccountTypeReceivable)
		otherInvoice := b.posted(KindClientInvoice, otherReceivable, f.revenue, "10", daysBefore(2))
		_, err := NewAssignment(b.tenantID, f.receipt, otherInvoice.Entry(), dec("5"), daysBefore(1), emptyState())
		var mismatch *MismatchedAccountError
		require.ErrorAs(t, err, &mismatch)
		assert.False(t, mismatch.CrossTenant)
	})

	t.Run("different tenant", func(t *testing.T) {
		other := newTestBook(t)
		foreign := other.posted(KindClientInvoice, other.account(AccountTypeReceivable), other.account(AccountTypeOperatingRevenue), "10", daysBefore(2))
		_, err := NewAssignment(b.tenantID, f.receipt, foreign.Entry(), dec("5"), daysBefore(1), emptyState())
		var mismatch *MismatchedAccountError
		require.ErrorAs(t, err, &mismatch)
		assert.True(t, mismatch.CrossTenant)
	})

	t.Run("unposted assigned", func(t *testing.T) {
		draft := b.transaction(KindClientInvoice, f.receivable, daysBefore(2))
		b.line(draft, f.revenue, "10")
		_, err := NewAssignment(b.tenantID, f.receipt, draft.Entry(), dec("5"), daysBefore(1), emptyState())
		assert.ErrorIs(t, err, ErrUnpostedAssignment)
	})

	t.Run("self clearance", func(t *testing.T) {
		journal := b.posted(KindJournalEntry, f.receivable, f.bank, "10", daysBefore(2))
		_, err := NewAssignment(b.tenantID, journal, journal.Entry(), dec("5"), daysBefore(1), emptyState())
		assert.ErrorIs(t, err, ErrSelfClearance)
	})

	t.Run("clearing kind cannot assign", func(t *testing.T) {
		_, err := NewAssignment(b.tenantID, f.invoice, f.receipt.Entry(), dec("5"), daysBefore(1), emptyState())
		assert.ErrorIs(t, err, ErrInvalidClearanceEntryType)
	})

	t.Run("assigned kind cannot be cleared", func(t *testing.T) {
		other := b.posted(KindClientReceipt, f.receivable, f.bank, "10", daysBefore(2))
		_, err := NewAssignment(b.tenantID, f.receipt, other.Entry(), dec("5"), daysBefore(1), emptyState())
		assert.ErrorIs(t, err, ErrInvalidClearanceEntryType)
	})

	t.Run("same side", func(t *testing.T) {
		creditBalance := b.balance(f.receivable, KindJournalEntry, "10", EntryTypeCredit, daysBefore(30))
		_, err := NewAssignment(b.tenantID, f.receipt, creditBalance.Entry(), dec("5"), daysBefore(1), emptyState())
		assert.ErrorIs(t, err, ErrInvalidClearanceEntryType)
	})

	t.Run("mixed assignment", func(t *testing.T) {
		state := emptyState()
		state.ClearingCleared = dec("1")
		_, err := NewAssignment(b.tenantID, f.receipt, f.invoice.Entry(), dec("5"), daysBefore(1), state)
		assert.ErrorIs(t, err, ErrMixedAssignment)
	})

	t.Run("opening balance can be cleared", func(t *testing.T) {
		opening := b.balance(f.receivable, KindClientInvoice, "45", EntryTypeDebit, daysBefore(365))
		a, err := NewAssignment(b.tenantID, f.receipt, opening.Entry(), dec("20"), daysBefore(1), emptyState())
		require.NoError(t, err)
		assert.Equal(t, AssignedTypeBalance, a.AssignedType)
	})
}

func TestNewClearance(t *testing.T) {
	c := NewClearance(dec("100"), dec("35"))
	assert.True(t, dec("65").Equal(c.Uncleared))
}
