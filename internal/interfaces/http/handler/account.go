package handler

import (
	"github.com/gin-gonic/gin"
	ledgerapp "github.com/openledger/backend/internal/application/ledger"
	"github.com/openledger/backend/internal/domain/shared"
)

// AccountHandler handles ledger account endpoints
type AccountHandler struct {
	BaseHandler
	accounts *ledgerapp.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accounts *ledgerapp.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Create opens a ledger account.
// @Summary      Create account
// @Description  Open a ledger account of one of the fixed account types
// @Tags         ledger-accounts
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        request body ledgerapp.CreateAccountRequest true "Account details"
// @Success      201 {object} dto.Response{data=ledgerapp.AccountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var req ledgerapp.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	account, err := h.accounts.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// List returns a page of accounts, optionally filtered by type.
// @Summary      List accounts
// @Description  Retrieve a paginated list of accounts
// @Tags         ledger-accounts
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        search query string false "Search term (name, code)"
// @Param        account_type query string false "Account type" Enums(NON_CURRENT_ASSET, CONTRA_ASSET, INVENTORY, BANK, CURRENT_ASSET, RECEIVABLE, NON_CURRENT_LIABILITY, CONTROL, CURRENT_LIABILITY, PAYABLE, RECONCILIATION, EQUITY, OPERATING_REVENUE, OPERATING_EXPENSE, NON_OPERATING_REVENUE, DIRECT_EXPENSE, OVERHEAD_EXPENSE, OTHER_EXPENSE)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]ledgerapp.AccountResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var filter ledgerapp.AccountListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	accounts, total, err := h.accounts.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageMeta(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, accounts, total, page, pageSize)
}

// Get returns one account.
// @Summary      Get account
// @Description  Retrieve an account by its ID
// @Tags         ledger-accounts
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        id path string true "Account ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.AccountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /accounts/{id} [get]
func (h *AccountHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "account")
	if !ok {
		return
	}

	account, err := h.accounts.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, account)
}

// Schedule returns the aging schedule of a receivable or payable account.
// @Summary      Get aging schedule
// @Description  List the clearable entries of a receivable or payable account with cleared amounts and age in days as of end_date
// @Tags         ledger-accounts
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        id path string true "Account ID" format(uuid)
// @Param        end_date query string false "End date (YYYY-MM-DD or RFC3339), defaults to now"
// @Success      200 {object} dto.Response{data=ledgerapp.ScheduleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /accounts/{id}/schedule [get]
func (h *AccountHandler) Schedule(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "account")
	if !ok {
		return
	}
	endDate, ok := h.queryDate(c, "end_date")
	if !ok {
		return
	}

	schedule, err := h.accounts.Schedule(c.Request.Context(), tenantID, id, endDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, schedule)
}

// ClosingBalance returns debits, credits and balance of an account.
// @Summary      Get closing balance
// @Description  Sum posted ledger entries and opening balances of an account up to as_of
// @Tags         ledger-accounts
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        id path string true "Account ID" format(uuid)
// @Param        as_of query string false "As-of date (YYYY-MM-DD or RFC3339), defaults to now"
// @Success      200 {object} dto.Response{data=ledgerapp.ClosingBalanceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /accounts/{id}/closing-balance [get]
func (h *AccountHandler) ClosingBalance(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "account")
	if !ok {
		return
	}
	asOf, ok := h.queryDate(c, "as_of")
	if !ok {
		return
	}

	balance, err := h.accounts.ClosingBalance(c.Request.Context(), tenantID, id, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// pageMeta reports the page and page size the repositories actually applied
func pageMeta(page, pageSize int) (int, int) {
	return max(page, 1), shared.Filter{PageSize: pageSize}.Limit()
}
