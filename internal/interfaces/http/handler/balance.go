package handler

import (
	"github.com/gin-gonic/gin"
	ledgerapp "github.com/openledger/backend/internal/application/ledger"
)

// BalanceHandler handles opening balance endpoints
type BalanceHandler struct {
	BaseHandler
	balances *ledgerapp.BalanceService
}

// NewBalanceHandler creates a new BalanceHandler
func NewBalanceHandler(balances *ledgerapp.BalanceService) *BalanceHandler {
	return &BalanceHandler{balances: balances}
}

// Create brings forward an opening balance.
// @Summary      Create opening balance
// @Description  Bring forward an opening balance on a balance sheet account
// @Tags         ledger-balances
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        request body ledgerapp.CreateBalanceRequest true "Opening balance"
// @Success      201 {object} dto.Response{data=ledgerapp.BalanceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /balances [post]
func (h *BalanceHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var req ledgerapp.CreateBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	balance, err := h.balances.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, balance)
}

// Get returns one opening balance.
// @Summary      Get opening balance
// @Description  Retrieve an opening balance by its ID
// @Tags         ledger-balances
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        id path string true "Balance ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.BalanceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /balances/{id} [get]
func (h *BalanceHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "balance")
	if !ok {
		return
	}

	balance, err := h.balances.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// Clearance reports how much of an opening balance has been cleared.
// @Summary      Get balance clearance
// @Description  Report the cleared and uncleared amounts of an opening balance
// @Tags         ledger-balances
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        id path string true "Balance ID" format(uuid)
// @Success      200 {object} dto.Response{data=ledgerapp.ClearanceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /balances/{id}/clearance [get]
func (h *BalanceHandler) Clearance(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "balance")
	if !ok {
		return
	}

	clearance, err := h.balances.Clearance(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, clearance)
}
