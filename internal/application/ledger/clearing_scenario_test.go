package ledger_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	app "github.com/openledger/backend/internal/application/ledger"
	"github.com/openledger/backend/internal/domain/ledger"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentService_ClearInvoiceWithReceipt(t *testing.T) {
	f := newLedgerFixture(t)
	c := f.chart()

	invoice := f.posted("CLIENT_INVOICE", c.receivable, days(0), line(c.revenue, "100"))
	receipt := f.posted("CLIENT_RECEIPT", c.receivable, days(5), line(c.bank, "60"))

	assignment, err := f.assign(receipt.Transaction.ID, invoice.Transaction.ID, "TRANSACTION", "45")
	require.NoError(t, err)
	assert.Equal(t, c.receivable, assignment.AccountID)
	assert.Equal(t, days(30), assignment.AssignmentDate)

	invoiceClearance, err := f.transactions.Clearance(f.ctx, f.tenantID, invoice.Transaction.ID)
	require.NoError(t, err)
	assert.True(t, invoiceClearance.ClearedAmount.Equal(dec("45")))
	assert.True(t, invoiceClearance.UnclearedAmount.Equal(dec("55")))
	assert.True(t, invoiceClearance.Assignable.IsZero())

	receiptClearance, err := f.transactions.Clearance(f.ctx, f.tenantID, receipt.Transaction.ID)
	require.NoError(t, err)
	assert.True(t, receiptClearance.AssignedAmount.Equal(dec("45")))
	assert.True(t, receiptClearance.Assignable.Equal(dec("15")))

	_, err = f.assign(receipt.Transaction.ID, invoice.Transaction.ID, "TRANSACTION", "20")
	var insufficient *ledger.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, receipt.Transaction.ID, insufficient.EntryID)
	assert.True(t, insufficient.Available.Equal(dec("15")))

	listed, err := f.transactions.Assignments(f.ctx, f.tenantID, receipt.Transaction.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, assignment.ID, listed[0].ID)

	require.NoError(t, f.assignments.Unassign(f.ctx, f.tenantID, assignment.ID))
	invoiceClearance, err = f.transactions.Clearance(f.ctx, f.tenantID, invoice.Transaction.ID)
	require.NoError(t, err)
	assert.True(t, invoiceClearance.ClearedAmount.IsZero())
	assert.True(t, invoiceClearance.UnclearedAmount.Equal(dec("100")))

	receiptClearance, err = f.transactions.Clearance(f.ctx, f.tenantID, receipt.Transaction.ID)
	require.NoError(t, err)
	assert.True(t, receiptClearance.AssignedAmount.IsZero())
	assert.True(t, receiptClearance.Assignable.Equal(dec("60")))

	assert.ErrorIs(t, f.assignments.Unassign(f.ctx, f.tenantID, assignment.ID), shared.ErrNotFound)

	assert.Equal(t, []string{
		ledger.EventTypeTransactionPosted,
		ledger.EventTypeTransactionPosted,
		ledger.EventTypeAssignmentCreated,
		ledger.EventTypeAssignmentRemoved,
	}, f.events.types())
}

func TestAssignmentService_FractionalAmountsClearExactly(t *testing.T) {
	f := newLedgerFixture(t)
	c := f.chart()

	invoice := f.posted("CLIENT_INVOICE", c.receivable, days(0), line(c.revenue, "0.6"))
	receipt := f.posted("CLIENT_RECEIPT", c.receivable, days(1), line(c.bank, "0.6"))

	for _, amount := range []string{"0.1", "0.2"} {
		_, err := f.assign(receipt.Transaction.ID, invoice.Transaction.ID, "TRANSACTION", amount)
		require.NoError(t, err)
	}

	invoiceClearance, err := f.transactions.Clearance(f.ctx, f.tenantID, invoice.Transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.3", invoiceClearance.ClearedAmount.String())
	assert.Equal(t, "0.3", invoiceClearance.UnclearedAmount.String())

	_, err = f.assign(receipt.Transaction.ID, invoice.Transaction.ID, "TRANSACTION", "0.3")
	require.NoError(t, err)

	invoiceClearance, err = f.transactions.Clearance(f.ctx, f.tenantID, invoice.Transaction.ID)
	require.NoError(t, err)
	assert.True(t, invoiceClearance.ClearedAmount.Equal(dec("0.6")), invoiceClearance.ClearedAmount.String())
	assert.True(t, invoiceClearance.UnclearedAmount.IsZero(), invoiceClearance.UnclearedAmount.String())

	receiptClearance, err := f.transactions.Clearance(f.ctx, f.tenantID, receipt.Transaction.ID)
	require.NoError(t, err)
	assert.True(t, receiptClearance.Assignable.IsZero(), receiptClearance.Assignable.String())

	f.posted("CLIENT_INVOICE", c.receivable, days(2), line(c.revenue, "0.1"))
	f.posted("CLIENT_INVOICE", c.receivable, days(2), line(c.revenue, "0.2"))
	closing, err := f.accounts.ClosingBalance(f.ctx, f.tenantID, c.receivable, nil)
	require.NoError(t, err)
	assert.Equal(t, "0.3", closing.Balance.String())
}

func TestAssignmentService_ClearOpeningBalance(t *testing.T) {
	f := newLedgerFixture(t)
	c := f.chart()

	opening, err := f.balances.Create(f.ctx, f.tenantID, app.CreateBalanceRequest{
		AccountID:       c.payable,
		TransactionKind: "SUPPLIER_BILL",
		TransactionDate: days(-90),
		Amount:          dec("300"),
		BalanceType:     "CREDIT",
		Reference:       "OB-1",
	})
	require.NoError(t, err)

	payment := f.posted("SUPPLIER_PAYMENT", c.payable, days(0), line(c.bank, "120"))
	_, err = f.assign(payment.Transaction.ID, opening.ID, "BALANCE", "120")
	require.NoError(t, err)

	clearance, err := f.balances.Clearance(f.ctx, f.tenantID, opening.ID)
	require.NoError(t, err)
	assert.Equal(t, "BALANCE", clearance.Type)
	assert.True(t, clearance.UnclearedAmount.Equal(dec("180")))

	closing, err := f.accounts.ClosingBalance(f.ctx, f.tenantID, c.payable, nil)
	require.NoError(t, err)
	assert.True(t, closing.Balance.Equal(dec("-180")), closing.Balance.String())
}

func TestAssignmentService_Rejections(t *testing.T) {
	f := newLedgerFixture(t)
	c := f.chart()

	invoice := f.posted("CLIENT_INVOICE", c.receivable, days(0), line(c.revenue, "100"))
	receipt := f.posted("CLIENT_RECEIPT", c.receivable, days(1), line(c.bank, "100"))

	tests := []struct {
		name     string
		clearing uuid.UUID
		assigned uuid.UUID
		typ      string
		amount   string
		want     error
	}{
		{"zero amount", receipt.Transaction.ID, invoice.Transaction.ID, "TRANSACTION", "0", ledger.ErrInvalidAmount},
		{"self clearance", receipt.Transaction.ID, receipt.Transaction.ID, "TRANSACTION", "10", ledger.ErrSelfClearance},
		{"invoice cannot clear", invoice.Transaction.ID, receipt.Transaction.ID, "TRANSACTION", "10", ledger.ErrInvalidClearanceEntryType},
		{"unknown clearing", uuid.New(), invoice.Transaction.ID, "TRANSACTION", "10", ledger.ErrMissingEntity},
		{"unknown balance", receipt.Transaction.ID, uuid.New(), "BALANCE", "10", ledger.ErrMissingEntity},
		{"exceeds outstanding", receipt.Transaction.ID, invoice.Transaction.ID, "TRANSACTION", "100.01", ledger.ErrInsufficientBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.assign(tt.clearing, tt.assigned, tt.typ, tt.amount)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("unposted entry", func(t *testing.T) {
		draft := f.draft("CLIENT_INVOICE", c.receivable, days(2), line(c.revenue, "10"))
		_, err := f.assign(receipt.Transaction.ID, draft.ID, "TRANSACTION", "10")
		assert.ErrorIs(t, err, ledger.ErrUnpostedAssignment)
	})

	t.Run("different account", func(t *testing.T) {
		other := f.account("Other Debtors", "RECEIVABLE")
		foreign := f.posted("CLIENT_INVOICE", other, days(2), line(c.revenue, "10"))
		_, err := f.assign(receipt.Transaction.ID, foreign.Transaction.ID, "TRANSACTION", "10")
		assert.ErrorIs(t, err, ledger.ErrMismatchedAccount)
	})

	t.Run("invalid assigned type", func(t *testing.T) {
		_, err := f.assign(receipt.Transaction.ID, invoice.Transaction.ID, "ORDER", "10")
		assert.Error(t, err)
	})

	assert.Empty(t, mustAssignments(t, f, receipt.Transaction.ID))
}

func mustAssignments(t *testing.T, f *ledgerFixture, clearing uuid.UUID) []app.AssignmentResponse {
	t.Helper()
	list, err := f.transactions.Assignments(f.ctx, f.tenantID, clearing)
	require.NoError(t, err)
	return list
}

func TestAssignmentService_ConcurrentAssignmentsNeverOverdraw(t *testing.T) {
	f := newLedgerFixture(t)
	c := f.chart()

	invoice := f.posted("CLIENT_INVOICE", c.receivable, days(0), line(c.revenue, "100"))
	receipt := f.posted("CLIENT_RECEIPT", c.receivable, days(1), line(c.bank, "200"))

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.assign(receipt.Transaction.ID, invoice.Transaction.ID, "TRANSACTION", "20")
			switch {
			case err == nil:
				succeeded.Add(1)
			case assert.ErrorIs(t, err, ledger.ErrInsufficientBalance):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 5, succeeded.Load())
	assert.EqualValues(t, 5, rejected.Load())

	clearance, err := f.transactions.Clearance(f.ctx, f.tenantID, invoice.Transaction.ID)
	require.NoError(t, err)
	assert.True(t, clearance.ClearedAmount.Equal(dec("100")))
	assert.True(t, clearance.UnclearedAmount.IsZero())
}
