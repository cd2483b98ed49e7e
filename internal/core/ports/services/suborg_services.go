package services

import (
	"context"

	"github.com/orgbooks/po_budget_app/internal/core/domain"
	"github.com/orgbooks/po_budget_app/internal/dto"
)

// SubOrgReaderSvc defines read operations for the sub-organization catalog.
type SubOrgReaderSvc interface {
	// GetSubOrgByID retrieves a specific sub-organization.
	GetSubOrgByID(ctx context.Context, subOrgID string) (*domain.SubOrganization, error)

	// ListSubOrgs retrieves the full catalog.
	ListSubOrgs(ctx context.Context) ([]domain.SubOrganization, error)
}

// SubOrgAdminSvc defines admin-gated write operations. BudgetSpent is never
// writable here; it belongs to the reconciliation engine.
type SubOrgAdminSvc interface {
	// UpdateBudgetAllocated sets the allocated budget. Requires ADMIN role.
	UpdateBudgetAllocated(ctx context.Context, subOrgID string, req dto.UpdateSubOrgBudgetRequest, requestingUserID string) (*domain.SubOrganization, error)
}

// SubOrgSvcFacade combines all sub-organization service interfaces.
type SubOrgSvcFacade interface {
	SubOrgReaderSvc
	SubOrgAdminSvc
}
