package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	app "github.com/openledger/backend/internal/application/ledger"
	"github.com/openledger/backend/internal/infrastructure/persistence"
	"github.com/openledger/backend/internal/infrastructure/persistence/models"
	"github.com/openledger/backend/internal/interfaces/http/dto"
	"github.com/openledger/backend/internal/interfaces/http/handler"
	"github.com/openledger/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

type ledgerAPI struct {
	t        *testing.T
	engine   *gin.Engine
	tenantID uuid.UUID
}

func newLedgerAPI(t *testing.T) *ledgerAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	t.Cleanup(func() { _ = sqlDB.Close() })

	uow := persistence.NewGormUnitOfWork(db)
	accountRepo := persistence.NewGormAccountRepository(db)
	txRepo := persistence.NewGormTransactionRepository(db)
	balanceRepo := persistence.NewGormBalanceRepository(db)
	assignmentRepo := persistence.NewGormAssignmentRepository(db)
	entryRepo := persistence.NewGormLedgerEntryRepository(db)
	taxRepo := persistence.NewGormTaxRepository(db)

	accounts := handler.NewAccountHandler(app.NewAccountService(accountRepo, txRepo, balanceRepo, assignmentRepo, entryRepo, uow))
	taxes := handler.NewTaxHandler(app.NewTaxService(taxRepo, accountRepo))
	transactions := handler.NewTransactionHandler(app.NewTransactionService(txRepo, accountRepo, taxRepo, entryRepo, assignmentRepo, uow))
	balances := handler.NewBalanceHandler(app.NewBalanceService(balanceRepo, accountRepo, assignmentRepo, uow))
	assignments := handler.NewAssignmentHandler(app.NewAssignmentService(assignmentRepo, txRepo, balanceRepo, uow))

	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1", middleware.TenantMiddleware())
	api.POST("/accounts", accounts.Create)
	api.GET("/accounts", accounts.List)
	api.GET("/accounts/:id", accounts.Get)
	api.GET("/accounts/:id/schedule", accounts.Schedule)
	api.GET("/accounts/:id/closing-balance", accounts.ClosingBalance)
	api.POST("/taxes", taxes.Create)
	api.GET("/taxes", taxes.List)
	api.POST("/transactions", transactions.Create)
	api.GET("/transactions", transactions.List)
	api.GET("/transactions/:id", transactions.Get)
	api.POST("/transactions/:id/line-items", transactions.AddLineItem)
	api.DELETE("/transactions/:id/line-items/:lineItemId", transactions.RemoveLineItem)
	api.POST("/transactions/:id/post", transactions.Post)
	api.GET("/transactions/:id/clearance", transactions.Clearance)
	api.GET("/transactions/:id/assignments", transactions.Assignments)
	api.POST("/balances", balances.Create)
	api.GET("/balances/:id", balances.Get)
	api.GET("/balances/:id/clearance", balances.Clearance)
	api.POST("/assignments", assignments.Assign)
	api.DELETE("/assignments/:id", assignments.Unassign)

	return &ledgerAPI{t: t, engine: engine, tenantID: uuid.New()}
}

func (a *ledgerAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TenantHeaderKey, a.tenantID.String())
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func (a *ledgerAPI) account(name, accountType string) uuid.UUID {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/accounts", gin.H{"name": name, "account_type": accountType})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[app.AccountResponse](a.t, w).Data.ID
}

func (a *ledgerAPI) post(kind string, main, line uuid.UUID, amount string, date time.Time) uuid.UUID {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/transactions", gin.H{
		"kind":             kind,
		"account_id":       main,
		"transaction_date": date,
		"narration":        kind,
		"line_items":       []gin.H{{"account_id": line, "amount": amount}},
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[app.TransactionResponse](a.t, w).Data.ID

	w = a.do(http.MethodPost, "/api/v1/transactions/"+id.String()+"/post", nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return id
}

func TestLedgerAPI_InvoiceReceiptLifecycle(t *testing.T) {
	a := newLedgerAPI(t)
	day := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	receivable := a.account("Trade Debtors", "RECEIVABLE")
	revenue := a.account("Sales", "OPERATING_REVENUE")
	bank := a.account("Bank", "BANK")

	invoice := a.post("CLIENT_INVOICE", receivable, revenue, "250.00", day)
	receipt := a.post("CLIENT_RECEIPT", receivable, bank, "100", day.AddDate(0, 0, 3))

	w := a.do(http.MethodPost, "/api/v1/transactions/"+invoice.String()+"/post", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodePostedTransaction, decode[any](t, w).Error.Code)

	w = a.do(http.MethodPost, "/api/v1/assignments", gin.H{
		"transaction_id":  receipt,
		"assigned_id":     invoice,
		"assigned_type":   "TRANSACTION",
		"amount":          "80",
		"assignment_date": day.AddDate(0, 0, 5),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assignment := decode[app.AssignmentResponse](t, w).Data
	assert.Equal(t, receivable, assignment.AccountID)

	w = a.do(http.MethodPost, "/api/v1/assignments", gin.H{
		"transaction_id": receipt,
		"assigned_id":    invoice,
		"assigned_type":  "TRANSACTION",
		"amount":         "30",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	failure := decode[any](t, w).Error
	assert.Equal(t, dto.ErrCodeInsufficientBalance, failure.Code)
	assert.Contains(t, failure.Message, receipt.String())

	w = a.do(http.MethodGet, "/api/v1/transactions/"+invoice.String()+"/clearance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	clearance := decode[app.ClearanceResponse](t, w).Data
	assert.True(t, clearance.UnclearedAmount.Equal(decimal.NewFromInt(170)))

	w = a.do(http.MethodGet, "/api/v1/transactions/"+receipt.String()+"/assignments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]app.AssignmentResponse](t, w).Data, 1)

	w = a.do(http.MethodGet, "/api/v1/accounts/"+receivable.String()+"/schedule?end_date=2025-02-11", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	schedule := decode[app.ScheduleResponse](t, w).Data
	require.Len(t, schedule.Entries, 1)
	assert.Equal(t, invoice, schedule.Entries[0].ID)
	assert.Equal(t, 10, schedule.Entries[0].Age)
	assert.True(t, schedule.UnclearedAmount.Equal(decimal.NewFromInt(170)))

	w = a.do(http.MethodGet, "/api/v1/accounts/"+receivable.String()+"/closing-balance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[app.ClosingBalanceResponse](t, w).Data.Balance.Equal(decimal.NewFromInt(150)))

	w = a.do(http.MethodDelete, "/api/v1/assignments/"+assignment.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodDelete, "/api/v1/assignments/"+assignment.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLedgerAPI_DraftEditing(t *testing.T) {
	a := newLedgerAPI(t)
	bank := a.account("Bank", "BANK")
	revenue := a.account("Sales", "OPERATING_REVENUE")

	w := a.do(http.MethodPost, "/api/v1/transactions", gin.H{
		"kind":             "CASH_SALE",
		"account_id":       bank,
		"transaction_date": time.Now().UTC(),
		"narration":        "Counter sale",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	txID := decode[app.TransactionResponse](t, w).Data.ID

	w = a.do(http.MethodPost, "/api/v1/transactions/"+txID.String()+"/line-items", gin.H{
		"account_id": revenue, "amount": "42.50", "narration": "Widgets",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tx := decode[app.TransactionResponse](t, w).Data
	require.Len(t, tx.LineItems, 1)

	w = a.do(http.MethodDelete, "/api/v1/transactions/"+txID.String()+"/line-items/"+tx.LineItems[0].ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[app.TransactionResponse](t, w).Data.LineItems)

	w = a.do(http.MethodPost, "/api/v1/transactions/"+txID.String()+"/post", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeMissingLineItem, decode[any](t, w).Error.Code)

	w = a.do(http.MethodGet, "/api/v1/transactions?posted=false&kind=CASH_SALE&account_id="+bank.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	list := decode[[]app.TransactionResponse](t, w)
	assert.Len(t, list.Data, 1)
	require.NotNil(t, list.Meta)
	assert.Equal(t, 20, list.Meta.PageSize)
}

func TestLedgerAPI_OpeningBalance(t *testing.T) {
	a := newLedgerAPI(t)
	payable := a.account("Trade Creditors", "PAYABLE")

	w := a.do(http.MethodPost, "/api/v1/balances", gin.H{
		"account_id":       payable,
		"transaction_kind": "SUPPLIER_BILL",
		"transaction_date": time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		"amount":           "900",
		"balance_type":     "CREDIT",
		"reference":        "OB-2024",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	balance := decode[app.BalanceResponse](t, w).Data

	w = a.do(http.MethodGet, "/api/v1/balances/"+balance.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OB-2024", decode[app.BalanceResponse](t, w).Data.Reference)

	w = a.do(http.MethodGet, "/api/v1/balances/"+balance.ID.String()+"/clearance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[app.ClearanceResponse](t, w).Data.UnclearedAmount.Equal(decimal.NewFromInt(900)))

	w = a.do(http.MethodPost, "/api/v1/balances", gin.H{
		"account_id":       payable,
		"transaction_kind": "SUPPLIER_BILL",
		"transaction_date": time.Now().UTC(),
		"amount":           "10",
		"balance_type":     "SIDEWAYS",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, decode[any](t, w).Error.Code)
}

func TestLedgerAPI_RequestErrors(t *testing.T) {
	a := newLedgerAPI(t)

	t.Run("missing tenant", func(t *testing.T) {
		w := httptest.NewRecorder()
		a.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/taxes", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed path id", func(t *testing.T) {
		w := a.do(http.MethodGet, "/api/v1/transactions/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, decode[any](t, w).Error.Code)
	})

	t.Run("unknown account", func(t *testing.T) {
		w := a.do(http.MethodGet, "/api/v1/accounts/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad schedule date", func(t *testing.T) {
		w := a.do(http.MethodGet, "/api/v1/accounts/"+uuid.NewString()+"/schedule?end_date=soon", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidDate, decode[any](t, w).Error.Code)
	})

	t.Run("schedule of a bank account", func(t *testing.T) {
		bank := a.account("Bank", "BANK")
		w := a.do(http.MethodGet, "/api/v1/accounts/"+bank.String()+"/schedule", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidAccountType, decode[any](t, w).Error.Code)
	})

	t.Run("tax on a bank account", func(t *testing.T) {
		bank := a.account("Petty Cash", "BANK")
		w := a.do(http.MethodPost, "/api/v1/taxes", gin.H{"name": "VAT", "code": "VAT", "rate": "16", "account_id": bank})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		control := a.account("VAT Control", "CONTROL")
		w = a.do(http.MethodPost, "/api/v1/taxes", gin.H{"name": "VAT", "code": "VAT", "rate": "16", "account_id": control})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = a.do(http.MethodGet, "/api/v1/taxes", nil)
		assert.Len(t, decode[[]app.TaxResponse](t, w).Data, 1)
	})

	t.Run("account list filters by type", func(t *testing.T) {
		w := a.do(http.MethodGet, "/api/v1/accounts?account_type=CONTROL", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Len(t, decode[[]app.AccountResponse](t, w).Data, 1)
	})
}
