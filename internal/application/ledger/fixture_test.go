package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	app "github.com/openledger/backend/internal/application/ledger"
	"github.com/openledger/backend/internal/domain/shared"
	"github.com/openledger/backend/internal/infrastructure/event"
	"github.com/openledger/backend/internal/infrastructure/persistence"
	"github.com/openledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var day0 = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func days(n int) time.Time {
	return day0.AddDate(0, 0, n)
}

type recordedEvents struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (r *recordedEvents) Handle(_ context.Context, evt shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *recordedEvents) EventTypes() []string { return nil }

func (r *recordedEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

// ledgerFixture wires the application services to one sqlite database
type ledgerFixture struct {
	t            *testing.T
	ctx          context.Context
	db           *gorm.DB
	tenantID     uuid.UUID
	accounts     *app.AccountService
	taxes        *app.TaxService
	transactions *app.TransactionService
	balances     *app.BalanceService
	assignments  *app.AssignmentService
	events       *recordedEvents
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a second connection to :memory: would see an empty database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	t.Cleanup(func() { _ = sqlDB.Close() })

	return newFixtureOn(t, db, persistence.NewGormUnitOfWork(db))
}

func newFixtureOn(t *testing.T, db *gorm.DB, uow *persistence.GormUnitOfWork) *ledgerFixture {
	t.Helper()
	accountRepo := persistence.NewGormAccountRepository(db)
	txRepo := persistence.NewGormTransactionRepository(db)
	balanceRepo := persistence.NewGormBalanceRepository(db)
	assignmentRepo := persistence.NewGormAssignmentRepository(db)
	entryRepo := persistence.NewGormLedgerEntryRepository(db)
	taxRepo := persistence.NewGormTaxRepository(db)

	bus := event.NewInMemoryEventBus(zap.NewNop())
	recorded := &recordedEvents{}
	bus.Subscribe(recorded)

	return &ledgerFixture{
		t:            t,
		ctx:          context.Background(),
		db:           db,
		tenantID:     uuid.New(),
		accounts:     app.NewAccountService(accountRepo, txRepo, balanceRepo, assignmentRepo, entryRepo, uow),
		taxes:        app.NewTaxService(taxRepo, accountRepo),
		transactions: app.NewTransactionService(txRepo, accountRepo, taxRepo, entryRepo, assignmentRepo, uow, app.WithTransactionEvents(bus)),
		balances:     app.NewBalanceService(balanceRepo, accountRepo, assignmentRepo, uow),
		assignments: app.NewAssignmentService(assignmentRepo, txRepo, balanceRepo, uow,
			app.WithAssignmentEvents(bus),
			app.WithAssignmentClock(func() time.Time { return days(30) }),
		),
		events: recorded,
	}
}

func (f *ledgerFixture) account(name, accountType string) uuid.UUID {
	f.t.Helper()
	resp, err := f.accounts.Create(f.ctx, f.tenantID, app.CreateAccountRequest{Name: name, AccountType: accountType})
	require.NoError(f.t, err)
	return resp.ID
}

func (f *ledgerFixture) draft(kind string, main uuid.UUID, date time.Time, lines ...app.LineItemRequest) *app.TransactionResponse {
	f.t.Helper()
	resp, err := f.transactions.Create(f.ctx, f.tenantID, app.CreateTransactionRequest{
		Kind:            kind,
		AccountID:       main,
		TransactionDate: date,
		Narration:       kind + " narration",
		LineItems:       lines,
	})
	require.NoError(f.t, err)
	return resp
}

func (f *ledgerFixture) posted(kind string, main uuid.UUID, date time.Time, lines ...app.LineItemRequest) *app.PostingResponse {
	f.t.Helper()
	tx := f.draft(kind, main, date, lines...)
	posting, err := f.transactions.Post(f.ctx, f.tenantID, tx.ID)
	require.NoError(f.t, err)
	return posting
}

func line(account uuid.UUID, amount string) app.LineItemRequest {
	return app.LineItemRequest{AccountID: account, Narration: "line", Amount: dec(amount)}
}

func taxedLine(account uuid.UUID, amount string, taxID uuid.UUID) app.LineItemRequest {
	l := line(account, amount)
	l.TaxID = &taxID
	return l
}

func (f *ledgerFixture) assign(clearing, assigned uuid.UUID, assignedType, amount string) (*app.AssignmentResponse, error) {
	return f.assignments.Assign(f.ctx, f.tenantID, app.AssignRequest{
		TransactionID: clearing,
		AssignedID:    assigned,
		AssignedType:  assignedType,
		Amount:        dec(amount),
	})
}

// standardChart opens one account of each type the scenarios use
type standardChart struct {
	bank, receivable, payable, revenue, expense, control uuid.UUID
}

func (f *ledgerFixture) chart() standardChart {
	return standardChart{
		bank:       f.account("Bank", "BANK"),
		receivable: f.account("Trade Debtors", "RECEIVABLE"),
		payable:    f.account("Trade Creditors", "PAYABLE"),
		revenue:    f.account("Sales", "OPERATING_REVENUE"),
		expense:    f.account("Office Expenses", "OPERATING_EXPENSE"),
		control:    f.account("VAT", "CONTROL"),
	}
}
