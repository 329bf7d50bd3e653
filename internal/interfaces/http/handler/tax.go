package handler

import (
	"github.com/gin-gonic/gin"
	ledgerapp "github.com/openledger/backend/internal/application/ledger"
)

// TaxHandler handles tax endpoints
type TaxHandler struct {
	BaseHandler
	taxes *ledgerapp.TaxService
}

// NewTaxHandler creates a new TaxHandler
func NewTaxHandler(taxes *ledgerapp.TaxService) *TaxHandler {
	return &TaxHandler{taxes: taxes}
}

// Create defines a tax collected into a control account.
// @Summary      Create tax
// @Description  Define a percentage tax collected into a CONTROL account
// @Tags         ledger-taxes
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        request body ledgerapp.CreateTaxRequest true "Tax details"
// @Success      201 {object} dto.Response{data=ledgerapp.TaxResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /taxes [post]
func (h *TaxHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var req ledgerapp.CreateTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	tax, err := h.taxes.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tax)
}

// List returns every tax of the tenant.
// @Summary      List taxes
// @Description  List every tax of the tenant
// @Tags         ledger-taxes
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]ledgerapp.TaxResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /taxes [get]
func (h *TaxHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	taxes, err := h.taxes.List(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, taxes)
}
