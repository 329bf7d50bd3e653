package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/openledger/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount_Validation(t *testing.T) {
	tenantID := uuid.New()

	a, err := NewAccount(tenantID, " Bank ", AccountTypeBank, "")
	require.NoError(t, err)
	assert.Equal(t, "Bank", a.Name)
	assert.Equal(t, valueobject.DefaultCurrency, a.Currency)

	_, err = NewAccount(tenantID, "Bank", AccountType("CRYPTO"), valueobject.USD)
	assert.ErrorIs(t, err, ErrInvalidAccountType)

	_, err = NewAccount(tenantID, "", AccountTypeBank, valueobject.USD)
	assert.Error(t, err)

	_, err = NewAccount(uuid.Nil, "Bank", AccountTypeBank, valueobject.USD)
	assert.Error(t, err)
}

func TestNewTransaction_Validation(t *testing.T) {
	tenantID := uuid.New()
	accountID := uuid.New()
	now := time.Now()

	_, err := NewTransaction(tenantID, TransactionKind("GIFT"), accountID, now, "n")
	assert.Error(t, err)
	_, err = NewTransaction(tenantID, KindCashSale, uuid.Nil, now, "n")
	assert.Error(t, err)
	_, err = NewTransaction(tenantID, KindCashSale, accountID, time.Time{}, "n")
	assert.Error(t, err)
	_, err = NewTransaction(tenantID, KindCashSale, accountID, now, " ")
	assert.Error(t, err)

	tx, err := NewTransaction(tenantID, KindCashPurchase, accountID, now, "stationery")
	require.NoError(t, err)
	assert.True(t, tx.IsCredited())
	assert.False(t, tx.IsPosted)
}

func TestTransaction_SetCreditedOnlyForJournals(t *testing.T) {
	tenantID := uuid.New()

	sale, err := NewTransaction(tenantID, KindCashSale, uuid.New(), time.Now(), "sale")
	require.NoError(t, err)
	assert.Error(t, sale.SetCredited(true))
	assert.False(t, sale.IsCredited())

	journal, err := NewTransaction(tenantID, KindJournalEntry, uuid.New(), time.Now(), "adjustment")
	require.NoError(t, err)
	assert.True(t, journal.IsCredited())
	require.NoError(t, journal.SetCredited(false))
	assert.Equal(t, EntryTypeDebit, journal.MainSide())
}

func TestTransaction_LineItems(t *testing.T) {
	tenantID := uuid.New()
	tx, err := NewTransaction(tenantID, KindCashSale, uuid.New(), time.Now(), "sale")
	require.NoError(t, err)

	_, err = NewLineItem(tenantID, uuid.New(), "zero", dec("0"))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	first, err := NewLineItem(tenantID, uuid.New(), "first", dec("10"))
	require.NoError(t, err)
	second, err := NewLineItem(tenantID, first.AccountID, "second", dec("5"))
	require.NoError(t, err)
	require.NoError(t, tx.AddLineItem(first))
	require.NoError(t, tx.AddLineItem(second))

	assert.Equal(t, tx.ID, tx.LineItems[0].TransactionID)
	assert.True(t, dec("15").Equal(tx.LineItemTotal()))
	assert.Len(t, tx.AccountIDs(), 2)

	require.NoError(t, tx.RemoveLineItem(first.ID))
	assert.True(t, dec("5").Equal(tx.LineItemTotal()))
	assert.ErrorIs(t, tx.RemoveLineItem(first.ID), ErrMissingEntity)

	foreign, err := NewLineItem(uuid.New(), uuid.New(), "foreign", dec("1"))
	require.NoError(t, err)
	assert.ErrorIs(t, tx.AddLineItem(foreign), ErrMissingEntity)
}

func TestNewBalance_Validation(t *testing.T) {
	b := newTestBook(t)
	receivable := b.account(AccountTypeReceivable)
	revenue := b.account(AccountTypeOperatingRevenue)

	_, err := NewBalance(b.tenantID, revenue, KindClientInvoice, daysBefore(1), dec("10"), EntryTypeDebit)
	assert.ErrorIs(t, err, ErrInvalidAccountType)

	_, err = NewBalance(b.tenantID, receivable, KindClientReceipt, daysBefore(1), dec("10"), EntryTypeDebit)
	assert.ErrorIs(t, err, ErrInvalidBalanceKind)

	_, err = NewBalance(b.tenantID, receivable, KindClientInvoice, daysBefore(1), dec("-1"), EntryTypeDebit)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewBalance(uuid.New(), receivable, KindClientInvoice, daysBefore(1), dec("10"), EntryTypeDebit)
	assert.ErrorIs(t, err, ErrMissingEntity)

	bal, err := NewBalance(b.tenantID, receivable, KindClientInvoice, daysBefore(1), dec("10"), EntryTypeDebit)
	require.NoError(t, err)
	entry := bal.Entry()
	assert.True(t, entry.Posted)
	assert.True(t, entry.Clearable())
	assert.Equal(t, AssignedTypeBalance, entry.Type)
}

func TestAmounts_RejectMoreDecimalPlacesThanStored(t *testing.T) {
	f := newClearingFixture(t)
	b := f.b

	t.Run("line item", func(t *testing.T) {
		_, err := NewLineItem(b.tenantID, f.revenue.ID, "tiny", dec("0.00005"))
		var amountErr *InvalidAmountError
		require.ErrorAs(t, err, &amountErr)
		assert.Equal(t, AmountScale, amountErr.Scale)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		item, err := NewLineItem(b.tenantID, f.revenue.ID, "exact", dec("0.0001"))
		require.NoError(t, err)
		assert.ErrorIs(t, item.WithQuantity(dec("1.23456")), ErrInvalidAmount)
		assert.NoError(t, item.WithQuantity(dec("1.50000")))
	})

	t.Run("balance", func(t *testing.T) {
		_, err := NewBalance(b.tenantID, f.receivable, KindClientInvoice, daysBefore(1), dec("10.12345"), EntryTypeDebit)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("assignment", func(t *testing.T) {
		_, err := NewAssignment(b.tenantID, f.receipt, f.invoice.Entry(), dec("1.00001"), daysBefore(1), emptyState())
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("tax rate", func(t *testing.T) {
		_, err := NewTax(b.tenantID, "VAT", "VAT", dec("16.00001"), b.account(AccountTypeControl))
		assert.Error(t, err)
	})
}
