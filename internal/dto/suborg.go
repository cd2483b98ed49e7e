package dto

import (
	"github.com/orgbooks/po_budget_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UpdateSubOrgBudgetRequest sets the admin-managed allocated budget.
// BudgetSpent is not accepted here: it is derived by reconciliation and no
// caller may set it directly.
type UpdateSubOrgBudgetRequest struct {
	BudgetAllocated decimal.Decimal `json:"budgetAllocated" binding:"required"`
}

// SubOrgResponse defines the data returned for a sub-organization.
type SubOrgResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	BudgetAllocated decimal.Decimal `json:"budgetAllocated"`
	BudgetSpent     decimal.Decimal `json:"budgetSpent"`
	BudgetRemaining decimal.Decimal `json:"budgetRemaining"`
}

// ListSubOrgsResponse wraps the full catalog.
type ListSubOrgsResponse struct {
	SubOrganizations []SubOrgResponse `json:"subOrganizations"`
}

// ToSubOrgResponse converts a domain.SubOrganization to its response DTO.
func ToSubOrgResponse(so *domain.SubOrganization) SubOrgResponse {
	return SubOrgResponse{
		ID:              so.SubOrgID,
		Name:            so.Name,
		BudgetAllocated: so.BudgetAllocated,
		BudgetSpent:     so.BudgetSpent,
		BudgetRemaining: so.BudgetRemaining(),
	}
}

// ToListSubOrgsResponse converts the catalog slice.
func ToListSubOrgsResponse(subOrgs []domain.SubOrganization) ListSubOrgsResponse {
	out := make([]SubOrgResponse, len(subOrgs))
	for i := range subOrgs {
		out[i] = ToSubOrgResponse(&subOrgs[i])
	}
	return ListSubOrgsResponse{SubOrganizations: out}
}
