package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/openledger/backend/internal/application/ledger"
)

// TransactionHandler handles transaction drafting, posting and clearance
// queries
type TransactionHandler struct {
	BaseHandler
	transactions *ledgerapp.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactions *ledgerapp.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// TransactionListQuery is the query string of the transaction list
type TransactionListQuery struct {
	Search    string     `form:"search"`
	AccountID string     `form:"account_id" binding:"omitempty,uuid"`
	Kind      string     `form:"kind"`
	Posted    *bool      `form:"posted"`
	FromDate  *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate    *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// Create drafts a transaction, optionally with its line items.
// @Summary      Create transaction
// @Description  Draft an unposted transaction; its accounts are validated against the rules of its kind
// @Tags         ledger-transactions
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        Idempotency-Key header string false "Idempotency key"
// @Param        request body ledgerapp.CreateTransactionRequest true "Transaction details"
// @Success      201 {object} dto.Response{data=ledgerapp.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var req ledgerapp.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	tx, err := h.transactions.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tx)
}

// List returns a page of transactions.
// @Summary      List transactions
// @Description  Retrieve a paginated list of transactions with filtering
// @Tags         ledger-transactions
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        search query string false "Search term (narration, reference)"
// @Param        account_id query string false "Main account ID" format(uuid)
// @Param        kind query string false "Transaction kind" Enums(CASH_SALE, CLIENT_INVOICE, CREDIT_NOTE, CLIENT_RECEIPT, CASH_PURCHASE, SUPPLIER_BILL, DEBIT_NOTE, SUPPLIER_PAYMENT, CONTRA_ENTRY, JOURNAL_ENTRY)
// @Param        posted query boolean false "Posted state"
// @Param        from_date query string false "From date" format(date)
// @Param        to_date query string false "To date" format(date)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]ledgerapp.TransactionResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var query TransactionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	filter := ledgerapp.TransactionListFilter{
		Search:   query.Search,
		Kind:     query.Kind,
		Posted:   query.Posted,
		FromDate: query.FromDate,
		ToDate:   query.ToDate,
		Page:     query.Page,
		PageSize: query.PageSize,
		OrderBy:  query.OrderBy,
		OrderDir: query.OrderDir,
	}
	if query.AccountID != "" {
		accountID := uuid.MustParse(query.AccountID)
		filter.AccountID = &accountID
	}

	txs, total, err := h.transactions.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageMeta(query.Page, query.PageSize)
	h.SuccessWithMeta(c, txs, total, page, pageSize)
}

// Get returns one transaction with its line items.
// @Summary      Get transaction
// @Description  Retrieve a transaction and its line items
// @Tags         ledger-transactions
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /transactions/{id} [get]
func (h *TransactionHandler) Get(c *gin.Context) {
	tenantID, id, ok := h.transactionTarget(c)
	if !ok {
		return
	}

	tx, err := h.transactions.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// AddLineItem attaches a line item to an unposted transaction.
// @Summary      Add line item
// @Description  Attach a line item to an unposted transaction
// @Tags         ledger-transactions
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        request body ledgerapp.LineItemRequest true "Line item"
// @Success      201 {object} dto.Response{data=ledgerapp.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /transactions/{id}/line-items [post]
func (h *TransactionHandler) AddLineItem(c *gin.Context) {
	tenantID, id, ok := h.transactionTarget(c)
	if !ok {
		return
	}

	var req ledgerapp.LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	tx, err := h.transactions.AddLineItem(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tx)
}

// RemoveLineItem detaches a line item from an unposted transaction.
// @Summary      Remove line item
// @Description  Detach a line item from an unposted transaction
// @Tags         ledger-transactions
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        lineItemId path string true "Line item ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /transactions/{id}/line-items/{lineItemId} [delete]
func (h *TransactionHandler) RemoveLineItem(c *gin.Context) {
	tenantID, id, ok := h.transactionTarget(c)
	if !ok {
		return
	}
	lineItemID, ok := h.pathID(c, "lineItemId", "line item")
	if !ok {
		return
	}

	tx, err := h.transactions.RemoveLineItem(c.Request.Context(), tenantID, id, lineItemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// Post validates the transaction and writes its ledger entries.
// @Summary      Post transaction
// @Description  Validate the transaction, add tax lines and write balanced ledger entries; posted transactions are immutable
// @Tags         ledger-transactions
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        id path string true "Transaction ID" format(uuid)
// @Param        Idempotency-Key header string false "Idempotency key"
// @Success      200 {object} dto.Response{data=ledgerapp.PostingResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /transactions/{id}/post [post]
func (h *TransactionHandler) Post(c *gin.Context) {
	tenantID, id, ok := h.transactionTarget(c)
	if !ok {
		return
	}

	posting, err := h.transactions.Post(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, posting)
}

// Clearance reports how much of a posted transaction has been cleared.
// @Summary      Get transaction clearance
// @Description  Report the cleared and uncleared amounts of a transaction and, for clearing kinds, the amount still assignable
// @Tags         ledger-transactions
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.ClearanceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /transactions/{id}/clearance [get]
func (h *TransactionHandler) Clearance(c *gin.Context) {
	tenantID, id, ok := h.transactionTarget(c)
	if !ok {
		return
	}

	clearance, err := h.transactions.Clearance(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, clearance)
}

// Assignments lists the assignments made by a clearing transaction.
// @Summary      List transaction assignments
// @Description  List the assignments made by a clearing transaction
// @Tags         ledger-transactions
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]ledgerapp.AssignmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /transactions/{id}/assignments [get]
func (h *TransactionHandler) Assignments(c *gin.Context) {
	tenantID, id, ok := h.transactionTarget(c)
	if !ok {
		return
	}

	assignments, err := h.transactions.Assignments(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, assignments)
}

func (h *TransactionHandler) transactionTarget(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := h.pathID(c, "id", "transaction")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, id, true
}
