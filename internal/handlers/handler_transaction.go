package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/orgbooks/po_budget_app/internal/core/ports/services"
	"github.com/orgbooks/po_budget_app/internal/dto"
	"github.com/orgbooks/po_budget_app/internal/middleware"
)

// transactionHandler handles HTTP requests for bank transactions, their
// allocations, and their purchase-order links.
type transactionHandler struct {
	txnService     portssvc.TransactionSvcFacade
	linkingService portssvc.LinkingSvcFacade
}

func newTransactionHandler(ts portssvc.TransactionSvcFacade, ls portssvc.LinkingSvcFacade) *transactionHandler {
	return &transactionHandler{
		txnService:     ts,
		linkingService: ls,
	}
}

// registerTransactionRoutes registers all transaction-related routes.
func registerTransactionRoutes(rg *gin.RouterGroup, txnService portssvc.TransactionSvcFacade, linkingService portssvc.LinkingSvcFacade) {
	h := newTransactionHandler(txnService, linkingService)

	txns := rg.Group("/transactions")
	{
		txns.GET("", h.listTransactions)
		txns.POST("", h.createTransaction)
		txns.GET("/:id", h.getTransaction)
		txns.PUT("/:id", h.updateTransaction)
		txns.DELETE("/:id", h.deleteTransaction)
		txns.PUT("/:id/allocations", h.replaceAllocations)
		txns.GET("/:id/links", h.getLinks)
		txns.PUT("/:id/links", h.replaceLinks)
	}
}

// listTransactions godoc
// @Summary List transactions
// @Description Retrieves a page of transactions, newest post date first.
// @Tags transactions
// @Produce json
// @Param limit query int false "Page size (default 20, max 100)"
// @Param nextToken query string false "Opaque pagination cursor"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions [get]
func (h *transactionHandler) listTransactions(c *gin.Context) {
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	txns, nextToken, err := h.txnService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns, nextToken))
}

// getTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions/{id} [get]
func (h *transactionHandler) getTransaction(c *gin.Context) {
	txn, err := h.txnService.GetTransactionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

// createTransaction godoc
// @Summary Create a transaction
// @Description Persists a new debit transaction and triggers a budget
// @Description reconciliation pass. A failed pass still returns 201 with a
// @Description reconciliationWarning field.
// @Tags transactions
// @Accept json
// @Produce json
// @Param transaction body dto.CreateTransactionRequest true "Transaction details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions [post]
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	txn, err := h.txnService.CreateTransaction(c.Request.Context(), req, userID)
	warning, committed := reconciliationWarning(err)
	if !committed {
		respondServiceError(c, err, "Failed to create transaction")
		return
	}

	logger.Info("Transaction created", slog.String("transaction_id", txn.TransactionID))
	resp := dto.ToTransactionResponse(txn)
	resp.ReconciliationWarning = warning
	c.JSON(http.StatusCreated, resp)
}

// updateTransaction godoc
// @Summary Update a transaction
// @Description Applies a partial update. Omitted fields are left untouched.
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param transaction body dto.UpdateTransactionRequest true "Fields to update"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions/{id} [put]
func (h *transactionHandler) updateTransaction(c *gin.Context) {
	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	txn, err := h.txnService.UpdateTransaction(c.Request.Context(), c.Param("id"), req, userID)
	warning, committed := reconciliationWarning(err)
	if !committed {
		respondServiceError(c, err, "Failed to update transaction")
		return
	}

	resp := dto.ToTransactionResponse(txn)
	resp.ReconciliationWarning = warning
	c.JSON(http.StatusOK, resp)
}

// deleteTransaction godoc
// @Summary Delete a transaction
// @Tags transactions
// @Param id path string true "Transaction ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions/{id} [delete]
func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	err := h.txnService.DeleteTransaction(c.Request.Context(), c.Param("id"), userID)
	if _, committed := reconciliationWarning(err); !committed {
		respondServiceError(c, err, "Failed to delete transaction")
		return
	}
	c.Status(http.StatusNoContent)
}

// replaceAllocations godoc
// @Summary Replace a transaction's allocations
// @Description Replaces the allocation set wholesale. Provide either manual
// @Description amounts or splitEquallyAmong for an equal distribution.
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param allocations body dto.ReplaceAllocationsRequest true "New allocation set"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions/{id}/allocations [put]
func (h *transactionHandler) replaceAllocations(c *gin.Context) {
	var req dto.ReplaceAllocationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	txn, err := h.txnService.ReplaceAllocations(c.Request.Context(), c.Param("id"), req, userID)
	warning, committed := reconciliationWarning(err)
	if !committed {
		respondServiceError(c, err, "Failed to replace allocations")
		return
	}

	resp := dto.ToTransactionResponse(txn)
	resp.ReconciliationWarning = warning
	c.JSON(http.StatusOK, resp)
}

// getLinks godoc
// @Summary Get a transaction's purchase-order links
// @Description Returns links in the multi-link shape; a legacy single link is
// @Description presented as one 100% entry.
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {array} dto.POLinkResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions/{id}/links [get]
func (h *transactionHandler) getLinks(c *gin.Context) {
	links, err := h.linkingService.ResolveLinks(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to resolve links")
		return
	}
	resp := dto.ToPOLinkResponses(links)
	if resp == nil {
		resp = []dto.POLinkResponse{}
	}
	c.JSON(http.StatusOK, resp)
}

// replaceLinks godoc
// @Summary Replace a transaction's purchase-order links
// @Description Replaces the link set wholesale. Incomplete rows are dropped.
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param links body dto.ReplaceLinksRequest true "New link set"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /transactions/{id}/links [put]
func (h *transactionHandler) replaceLinks(c *gin.Context) {
	var req dto.ReplaceLinksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	txn, err := h.linkingService.ApplyLinks(c.Request.Context(), c.Param("id"), req, userID)
	warning, committed := reconciliationWarning(err)
	if !committed {
		respondServiceError(c, err, "Failed to replace links")
		return
	}

	resp := dto.ToTransactionResponse(txn)
	resp.ReconciliationWarning = warning
	c.JSON(http.StatusOK, resp)
}
