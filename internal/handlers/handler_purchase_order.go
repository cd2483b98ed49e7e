package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orgbooks/po_budget_app/internal/core/domain"
	portssvc "github.com/orgbooks/po_budget_app/internal/core/ports/services"
	"github.com/orgbooks/po_budget_app/internal/dto"
)

// purchaseOrderHandler handles HTTP requests for purchase orders and their
// approval workflow.
type purchaseOrderHandler struct {
	poService portssvc.POSvcFacade
}

func newPurchaseOrderHandler(ps portssvc.POSvcFacade) *purchaseOrderHandler {
	return &purchaseOrderHandler{poService: ps}
}

// registerPurchaseOrderRoutes registers all purchase order routes.
func registerPurchaseOrderRoutes(rg *gin.RouterGroup, poService portssvc.POSvcFacade) {
	h := newPurchaseOrderHandler(poService)

	pos := rg.Group("/purchase-orders")
	{
		pos.GET("", h.listPOs)
		pos.POST("", h.createPO)
		pos.GET("/:id", h.getPO)
		pos.PUT("/:id", h.updatePO)
		pos.DELETE("/:id", h.deletePO)

		pos.POST("/:id/submit", h.submitPO)
		pos.POST("/:id/approve", h.approvePO)              // Admin only
		pos.POST("/:id/decline", h.declinePO)              // Admin only
		pos.POST("/:id/resubmit", h.resubmitPO)
		pos.POST("/:id/mark-purchasing", h.markPurchasing) // Admin only
		pos.POST("/:id/mark-purchased", h.markPurchased)   // Admin only
	}
}

// listPOs godoc
// @Summary List purchase orders
// @Tags purchase-orders
// @Produce json
// @Param status query string false "Filter by status"
// @Param limit query int false "Page size (default 20)"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.ListPOsResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /purchase-orders [get]
func (h *purchaseOrderHandler) listPOs(c *gin.Context) {
	var params dto.ListPOsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	pos, err := h.poService.ListPOs(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, err, "Failed to list purchase orders")
		return
	}
	c.JSON(http.StatusOK, dto.ToListPOsResponse(pos))
}

// getPO godoc
// @Summary Get a purchase order
// @Tags purchase-orders
// @Produce json
// @Param id path string true "Purchase order ID"
// @Success 200 {object} dto.POResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /purchase-orders/{id} [get]
func (h *purchaseOrderHandler) getPO(c *gin.Context) {
	po, err := h.poService.GetPOByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve purchase order")
		return
	}
	c.JSON(http.StatusOK, dto.ToPOResponse(po))
}

// createPO godoc
// @Summary Create a draft purchase order
// @Tags purchase-orders
// @Accept json
// @Produce json
// @Param purchaseOrder body dto.CreatePORequest true "Purchase order details"
// @Success 201 {object} dto.POResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /purchase-orders [post]
func (h *purchaseOrderHandler) createPO(c *gin.Context) {
	var req dto.CreatePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	po, err := h.poService.CreatePO(c.Request.Context(), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to create purchase order")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPOResponse(po))
}

// updatePO godoc
// @Summary Update an editable purchase order
// @Description Only draft and declined purchase orders accept content edits.
// @Tags purchase-orders
// @Accept json
// @Produce json
// @Param id path string true "Purchase order ID"
// @Param purchaseOrder body dto.UpdatePORequest true "Fields to update"
// @Success 200 {object} dto.POResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /purchase-orders/{id} [put]
func (h *purchaseOrderHandler) updatePO(c *gin.Context) {
	var req dto.UpdatePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	po, err := h.poService.UpdatePO(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to update purchase order")
		return
	}
	c.JSON(http.StatusOK, dto.ToPOResponse(po))
}

// deletePO godoc
// @Summary Delete a purchase order
// @Tags purchase-orders
// @Param id path string true "Purchase order ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /purchase-orders/{id} [delete]
func (h *purchaseOrderHandler) deletePO(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.poService.DeletePO(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondServiceError(c, err, "Failed to delete purchase order")
		return
	}
	c.Status(http.StatusNoContent)
}

// submitPO godoc
// @Summary Submit a draft for approval
// @Tags purchase-orders
// @Produce json
// @Param id path string true "Purchase order ID"
// @Success 200 {object} dto.POResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /purchase-orders/{id}/submit [post]
func (h *purchaseOrderHandler) submitPO(c *gin.Context) {
	h.transition(c, h.poService.SubmitPO, "Failed to submit purchase order")
}

// approvePO godoc
// @Summary Approve a pending purchase order
// @Tags purchase-orders
// @Produce json
// @Param id path string true "Purchase order ID"
// @Success 200 {object} dto.POResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /purchase-orders/{id}/approve [post]
func (h *purchaseOrderHandler) approvePO(c *gin.Context) {
	h.transition(c, h.poService.ApprovePO, "Failed to approve purchase order")
}

// declinePO godoc
// @Summary Decline a pending purchase order
// @Tags purchase-orders
// @Accept json
// @Produce json
// @Param id path string true "Purchase order ID"
// @Param decline body dto.DeclinePORequest true "Reviewer comments"
// @Success 200 {object} dto.POResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /purchase-orders/{id}/decline [post]
func (h *purchaseOrderHandler) declinePO(c *gin.Context) {
	var req dto.DeclinePORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	po, err := h.poService.DeclinePO(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to decline purchase order")
		return
	}
	c.JSON(http.StatusOK, dto.ToPOResponse(po))
}

// resubmitPO godoc
// @Summary Return a declined purchase order to draft
// @Tags purchase-orders
// @Produce json
// @Param id path string true "Purchase order ID"
// @Success 200 {object} dto.POResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /purchase-orders/{id}/resubmit [post]
func (h *purchaseOrderHandler) resubmitPO(c *gin.Context) {
	h.transition(c, h.poService.ResubmitPO, "Failed to resubmit purchase order")
}

// markPurchasing godoc
// @Summary Mark an approved purchase order as being purchased
// @Tags purchase-orders
// @Produce json
// @Param id path string true "Purchase order ID"
// @Success 200 {object} dto.POResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /purchase-orders/{id}/mark-purchasing [post]
func (h *purchaseOrderHandler) markPurchasing(c *gin.Context) {
	h.transition(c, h.poService.MarkPOPurchasing, "Failed to mark purchase order purchasing")
}

// markPurchased godoc
// @Summary Mark a purchase order as purchased (terminal)
// @Tags purchase-orders
// @Produce json
// @Param id path string true "Purchase order ID"
// @Success 200 {object} dto.POResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /purchase-orders/{id}/mark-purchased [post]
func (h *purchaseOrderHandler) markPurchased(c *gin.Context) {
	h.transition(c, h.poService.MarkPOPurchased, "Failed to mark purchase order purchased")
}

// transition runs a one-argument state machine operation and renders the result.
func (h *purchaseOrderHandler) transition(c *gin.Context, op func(ctx context.Context, poID string, requestingUserID string) (*domain.PurchaseOrder, error), fallbackMsg string) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	po, err := op(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondServiceError(c, err, fallbackMsg)
		return
	}
	c.JSON(http.StatusOK, dto.ToPOResponse(po))
}
