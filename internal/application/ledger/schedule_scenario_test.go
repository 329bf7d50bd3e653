package ledger_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	app "github.com/openledger/backend/internal/application/ledger"
	"github.com/openledger/backend/internal/domain/ledger"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_ReceivableSchedule(t *testing.T) {
	f := newLedgerFixture(t)
	c := f.chart()

	opening, err := f.balances.Create(f.ctx, f.tenantID, app.CreateBalanceRequest{
		AccountID:       c.receivable,
		TransactionKind: "CLIENT_INVOICE",
		TransactionDate: days(-20),
		Amount:          dec("50"),
		BalanceType:     "DEBIT",
		Reference:       "OB-7",
	})
	require.NoError(t, err)

	first := f.posted("CLIENT_INVOICE", c.receivable, days(0), line(c.revenue, "100"))
	second := f.posted("CLIENT_INVOICE", c.receivable, days(5), line(c.revenue, "40"))
	f.draft("CLIENT_INVOICE", c.receivable, days(1), line(c.revenue, "999"))
	f.posted("CLIENT_INVOICE", c.receivable, days(50), line(c.revenue, "75"))
	receipt := f.posted("CLIENT_RECEIPT", c.receivable, days(6), line(c.bank, "70"))

	assignOn := func(assigned uuid.UUID, assignedType, amount string, date time.Time) {
		t.Helper()
		_, err := f.assignments.Assign(f.ctx, f.tenantID, app.AssignRequest{
			TransactionID:  receipt.Transaction.ID,
			AssignedID:     assigned,
			AssignedType:   assignedType,
			Amount:         dec(amount),
			AssignmentDate: &date,
		})
		require.NoError(t, err)
	}
	assignOn(first.Transaction.ID, "TRANSACTION", "60", days(7))
	assignOn(opening.ID, "BALANCE", "10", days(40))

	t.Run("as of day ten", func(t *testing.T) {
		end := days(10)
		schedule, err := f.accounts.Schedule(f.ctx, f.tenantID, c.receivable, &end)
		require.NoError(t, err)

		require.Len(t, schedule.Entries, 3)
		assert.Equal(t, opening.ID, schedule.Entries[0].ID)
		assert.Equal(t, "BALANCE", schedule.Entries[0].Type)
		assert.Equal(t, 30, schedule.Entries[0].Age)
		assert.True(t, schedule.Entries[0].ClearedAmount.IsZero())

		assert.Equal(t, first.Transaction.ID, schedule.Entries[1].ID)
		assert.Equal(t, 10, schedule.Entries[1].Age)
		assert.True(t, schedule.Entries[1].UnclearedAmount.Equal(dec("40")))

		assert.Equal(t, second.Transaction.ID, schedule.Entries[2].ID)
		assert.Equal(t, 5, schedule.Entries[2].Age)

		assert.True(t, schedule.TotalAmount.Equal(dec("190")))
		assert.True(t, schedule.ClearedAmount.Equal(dec("60")))
		assert.True(t, schedule.UnclearedAmount.Equal(dec("130")))
	})

	t.Run("later assignments count once dated", func(t *testing.T) {
		end := days(40)
		schedule, err := f.accounts.Schedule(f.ctx, f.tenantID, c.receivable, &end)
		require.NoError(t, err)

		require.Len(t, schedule.Entries, 3)
		assert.True(t, schedule.Entries[0].ClearedAmount.Equal(dec("10")))
		assert.True(t, schedule.UnclearedAmount.Equal(dec("120")))
	})

	t.Run("rejects accounts without a schedule", func(t *testing.T) {
		_, err := f.accounts.Schedule(f.ctx, f.tenantID, c.bank, nil)
		var typeErr *ledger.InvalidAccountTypeError
		require.ErrorAs(t, err, &typeErr)
		assert.Equal(t, ledger.AccountTypeBank, typeErr.AccountType)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := f.accounts.Schedule(f.ctx, f.tenantID, uuid.New(), nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestAccountService_PayableScheduleUsesCreditSide(t *testing.T) {
	f := newLedgerFixture(t)
	c := f.chart()

	bill := f.posted("SUPPLIER_BILL", c.payable, days(0), line(c.expense, "80"))
	f.posted("DEBIT_NOTE", c.payable, days(2), line(c.expense, "15"))

	end := days(3)
	schedule, err := f.accounts.Schedule(f.ctx, f.tenantID, c.payable, &end)
	require.NoError(t, err)

	require.Len(t, schedule.Entries, 1)
	assert.Equal(t, bill.Transaction.ID, schedule.Entries[0].ID)
	assert.Equal(t, "PAYABLE", schedule.AccountType)
	assert.True(t, schedule.UnclearedAmount.Equal(dec("80")))
}
