package handler

import (
	"github.com/gin-gonic/gin"
	ledgerapp "github.com/openledger/backend/internal/application/ledger"
)

// AssignmentHandler handles clearing assignments
type AssignmentHandler struct {
	BaseHandler
	assignments *ledgerapp.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler
func NewAssignmentHandler(assignments *ledgerapp.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// Assign clears part of a posted transaction or opening balance with a
// clearing transaction.
// @Summary      Assign
// @Description  Clear part of a posted transaction or opening balance with a posted clearing transaction on the same account
// @Tags         ledger-assignments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        Idempotency-Key header string false "Idempotency key"
// @Param        request body ledgerapp.AssignRequest true "Assignment"
// @Success      201 {object} dto.Response{data=ledgerapp.AssignmentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /assignments [post]
func (h *AssignmentHandler) Assign(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}

	var req ledgerapp.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	assignment, err := h.assignments.Assign(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, assignment)
}

// Unassign removes an assignment, restoring the outstanding amounts.
// @Summary      Unassign
// @Description  Remove an assignment
// @Tags         ledger-assignments
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID" format(uuid)
// @Param        id path string true "Assignment ID" format(uuid)
// @Success      204 "No Content"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /assignments/{id} [delete]
func (h *AssignmentHandler) Unassign(c *gin.Context) {
	tenantID, ok := h.tenantOrAbort(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id", "assignment")
	if !ok {
		return
	}

	if err := h.assignments.Unassign(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
