package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entriesFor(entries []*LedgerEntry, accountID uuid.UUID) []*LedgerEntry {
	var out []*LedgerEntry
	for _, e := range entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out
}

// ============================================
// Posting side Tests
// ============================================

func TestPost_MainAccountSidePerKind(t *testing.T) {
	tests := []struct {
		kind     TransactionKind
		main     AccountType
		line     AccountType
		mainSide EntryType
	}{
		{KindCashSale, AccountTypeBank, AccountTypeOperatingRevenue, EntryTypeDebit},
		{KindCashPurchase, AccountTypeBank, AccountTypeDirectExpense, EntryTypeCredit},
		{KindClientInvoice, AccountTypeReceivable, AccountTypeOperatingRevenue, EntryTypeDebit},
		{KindSupplierBill, AccountTypePayable, AccountTypeOperatingExpense, EntryTypeCredit},
		{KindCreditNote, AccountTypeReceivable, AccountTypeOperatingRevenue, EntryTypeCredit},
		{KindDebitNote, AccountTypePayable, AccountTypeInventory, EntryTypeDebit},
		{KindClientReceipt, AccountTypeReceivable, AccountTypeBank, EntryTypeCredit},
		{KindSupplierPayment, AccountTypePayable, AccountTypeBank, EntryTypeDebit},
		{KindContraEntry, AccountTypeBank, AccountTypeBank, EntryTypeDebit},
		{KindJournalEntry, AccountTypeEquity, AccountTypeCurrentAsset, EntryTypeCredit},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			b := newTestBook(t)
			main := b.account(tt.main)
			lineA := b.account(tt.line)
			lineB := b.account(tt.line)

			tx := b.transaction(tt.kind, main, daysBefore(1))
			b.line(tx, lineA, "60")
			b.line(tx, lineB, "40.50")

			posting, err := b.poster.Post(tx, b.accounts, nil)
			require.NoError(t, err)

			mainEntries := entriesFor(posting.Entries, main.ID)
			require.Len(t, mainEntries, 1)
			assert.Equal(t, tt.mainSide, mainEntries[0].EntryType)
			assert.True(t, dec("100.50").Equal(mainEntries[0].Amount))

			for _, e := range entriesFor(posting.Entries, lineA.ID) {
				assert.Equal(t, tt.mainSide.Opposite(), e.EntryType)
			}

			debits, credits := SumEntries(posting.Entries)
			assert.True(t, debits.Equal(credits))
			assert.True(t, tx.IsPosted)
			assert.True(t, dec("100.50").Equal(tx.Amount))
			assert.Equal(t, testEndDate, *tx.PostedAt)
		})
	}
}

func TestPost_JournalEntryDebitedMainAccount(t *testing.T) {
	b := newTestBook(t)
	main := b.account(AccountTypeReceivable)
	other := b.account(AccountTypeEquity)

	tx := b.transaction(KindJournalEntry, main, daysBefore(1))
	require.NoError(t, tx.SetCredited(false))
	b.line(tx, other, "25")

	posting, err := b.poster.Post(tx, b.accounts, nil)
	require.NoError(t, err)
	assert.Equal(t, EntryTypeDebit, entriesFor(posting.Entries, main.ID)[0].EntryType)
	assert.Equal(t, EntryTypeCredit, entriesFor(posting.Entries, other.ID)[0].EntryType)
}

// ============================================
// Tax Tests
// ============================================

func TestPost_AddsTaxLines(t *testing.T) {
	b := newTestBook(t)
	receivable := b.account(AccountTypeReceivable)
	revenue := b.account(AccountTypeOperatingRevenue)
	control := b.account(AccountTypeControl)

	vat, err := NewTax(b.tenantID, "Value Added Tax", "vat", dec("16"), control)
	require.NoError(t, err)

	tx := b.transaction(KindClientInvoice, receivable, daysBefore(1))
	taxed := b.line(tx, revenue, "100")
	taxed.WithTax(vat.ID)
	b.line(tx, revenue, "50")

	posting, err := b.poster.Post(tx, b.accounts, NewRateTaxCalculator(vat))
	require.NoError(t, err)

	require.Len(t, posting.TaxLines, 1)
	assert.True(t, dec("16").Equal(posting.TaxLines[0].Amount))
	assert.Equal(t, control.ID, posting.TaxLines[0].AccountID)

	controlEntries := entriesFor(posting.Entries, control.ID)
	require.Len(t, controlEntries, 1)
	assert.Equal(t, EntryTypeCredit, controlEntries[0].EntryType)
	assert.Equal(t, vat.ID, *controlEntries[0].TaxID)

	mainEntry := entriesFor(posting.Entries, receivable.ID)[0]
	assert.True(t, dec("166").Equal(mainEntry.Amount))
	assert.True(t, dec("166").Equal(tx.Amount))

	debits, credits := SumEntries(posting.Entries)
	assert.True(t, debits.Equal(credits))
}

func TestPost_TaxedLineWithoutCalculator(t *testing.T) {
	b := newTestBook(t)
	bank := b.account(AccountTypeBank)
	revenue := b.account(AccountTypeOperatingRevenue)

	tx := b.transaction(KindCashSale, bank, daysBefore(1))
	b.line(tx, revenue, "10").WithTax(uuid.New())

	_, err := b.poster.Post(tx, b.accounts, nil)
	assert.ErrorIs(t, err, ErrMissingEntity)
	assert.False(t, tx.IsPosted)
}

func TestNewTax_RequiresControlAccount(t *testing.T) {
	b := newTestBook(t)
	bank := b.account(AccountTypeBank)

	_, err := NewTax(b.tenantID, "VAT", "VAT", dec("16"), bank)
	assert.ErrorIs(t, err, ErrInvalidAccountType)

	_, err = NewTax(b.tenantID, "VAT", "VAT", decimal.NewFromInt(-1), b.account(AccountTypeControl))
	assert.Error(t, err)
}

// ============================================
// Failure Tests
// ============================================

func TestPost_MissingLineItems(t *testing.T) {
	b := newTestBook(t)
	tx := b.transaction(KindCashSale, b.account(AccountTypeBank), daysBefore(1))

	_, err := b.poster.Post(tx, b.accounts, nil)

	var missing *MissingLineItemError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, tx.ID, missing.TransactionID)
	assert.False(t, tx.IsPosted)
}

func TestPost_InvalidTransactionIsNotPosted(t *testing.T) {
	b := newTestBook(t)
	tx := b.transaction(KindCashSale, b.account(AccountTypePayable), daysBefore(1))
	b.line(tx, b.account(AccountTypeOperatingRevenue), "10")

	_, err := b.poster.Post(tx, b.accounts, nil)
	assert.ErrorIs(t, err, ErrInvalidAccountType)
	assert.False(t, tx.IsPosted)
	assert.Empty(t, tx.GetDomainEvents())
}

func TestPost_PostedTransactionIsImmutable(t *testing.T) {
	b := newTestBook(t)
	bank := b.account(AccountTypeBank)
	revenue := b.account(AccountTypeOperatingRevenue)
	tx := b.posted(KindCashSale, bank, revenue, "10", daysBefore(1))

	_, err := b.poster.Post(tx, b.accounts, nil)
	assert.ErrorIs(t, err, ErrPostedTransaction)

	item, err := NewLineItem(b.tenantID, revenue.ID, "late", dec("1"))
	require.NoError(t, err)
	assert.ErrorIs(t, tx.AddLineItem(item), ErrPostedTransaction)
	assert.ErrorIs(t, tx.RemoveLineItem(tx.LineItems[0].ID), ErrPostedTransaction)
	assert.ErrorIs(t, tx.SetReference("x"), ErrPostedTransaction)
	assert.Len(t, tx.LineItems, 1)
}

func TestPost_RaisesPostedEvent(t *testing.T) {
	b := newTestBook(t)
	tx := b.posted(KindCashSale, b.account(AccountTypeBank), b.account(AccountTypeOperatingRevenue), "10", daysBefore(1))

	events := tx.GetDomainEvents()
	require.Len(t, events, 1)
	posted, ok := events[0].(*TransactionPostedEvent)
	require.True(t, ok)
	assert.Equal(t, EventTypeTransactionPosted, posted.EventType())
	assert.True(t, dec("10").Equal(posted.Amount))
}
