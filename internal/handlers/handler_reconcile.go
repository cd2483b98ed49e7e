package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/orgbooks/po_budget_app/internal/core/ports/services"
)

// reconcileHandler exposes a manual trigger for the budget reconciliation
// pass. Every mutation already triggers one; this endpoint exists to heal
// drift left behind by failed passes without waiting for the next edit.
type reconcileHandler struct {
	reconciliation portssvc.ReconciliationSvc
}

// registerReconcileRoutes registers the manual reconciliation trigger.
func registerReconcileRoutes(rg *gin.RouterGroup, reconciliation portssvc.ReconciliationSvc) {
	h := &reconcileHandler{reconciliation: reconciliation}
	rg.POST("/reconcile", h.reconcile)
}

// reconcile godoc
// @Summary Trigger a budget reconciliation pass
// @Description Recomputes every sub-organization's budgetSpent from the full
// @Description transaction set.
// @Tags reconciliation
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /reconcile [post]
func (h *reconcileHandler) reconcile(c *gin.Context) {
	if err := h.reconciliation.Reconcile(c.Request.Context()); err != nil {
		respondServiceError(c, err, "Reconciliation pass failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reconciled"})
}
