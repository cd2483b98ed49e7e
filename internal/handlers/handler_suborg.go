package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/orgbooks/po_budget_app/internal/core/ports/services"
	"github.com/orgbooks/po_budget_app/internal/dto"
)

// subOrgHandler handles HTTP requests for the sub-organization catalog.
type subOrgHandler struct {
	subOrgService portssvc.SubOrgSvcFacade
}

func newSubOrgHandler(ss portssvc.SubOrgSvcFacade) *subOrgHandler {
	return &subOrgHandler{subOrgService: ss}
}

// registerSubOrgRoutes registers all sub-organization routes.
func registerSubOrgRoutes(rg *gin.RouterGroup, subOrgService portssvc.SubOrgSvcFacade) {
	h := newSubOrgHandler(subOrgService)

	subOrgs := rg.Group("/sub-organizations")
	{
		subOrgs.GET("", h.listSubOrgs)
		subOrgs.GET("/:id", h.getSubOrg)
		subOrgs.PUT("/:id/budget", h.updateBudget) // Admin only
	}
}

// listSubOrgs godoc
// @Summary List sub-organizations
// @Description Returns the full catalog with allocated, spent, and remaining budgets.
// @Tags sub-organizations
// @Produce json
// @Success 200 {object} dto.ListSubOrgsResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /sub-organizations [get]
func (h *subOrgHandler) listSubOrgs(c *gin.Context) {
	subOrgs, err := h.subOrgService.ListSubOrgs(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to list sub-organizations")
		return
	}
	c.JSON(http.StatusOK, dto.ToListSubOrgsResponse(subOrgs))
}

// getSubOrg godoc
// @Summary Get a sub-organization
// @Tags sub-organizations
// @Produce json
// @Param id path string true "Sub-organization ID"
// @Success 200 {object} dto.SubOrgResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /sub-organizations/{id} [get]
func (h *subOrgHandler) getSubOrg(c *gin.Context) {
	subOrg, err := h.subOrgService.GetSubOrgByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve sub-organization")
		return
	}
	c.JSON(http.StatusOK, dto.ToSubOrgResponse(subOrg))
}

// updateBudget godoc
// @Summary Set a sub-organization's allocated budget
// @Description Admin only. budgetSpent is derived and cannot be set here.
// @Tags sub-organizations
// @Accept json
// @Produce json
// @Param id path string true "Sub-organization ID"
// @Param budget body dto.UpdateSubOrgBudgetRequest true "New allocated budget"
// @Success 200 {object} dto.SubOrgResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /sub-organizations/{id}/budget [put]
func (h *subOrgHandler) updateBudget(c *gin.Context) {
	var req dto.UpdateSubOrgBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	subOrg, err := h.subOrgService.UpdateBudgetAllocated(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to update budget")
		return
	}
	c.JSON(http.StatusOK, dto.ToSubOrgResponse(subOrg))
}
