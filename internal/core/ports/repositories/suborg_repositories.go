package repositories

import (
	"context"
	"time"

	"github.com/orgbooks/po_budget_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SubOrgReader defines read operations for the sub-organization catalog.
type SubOrgReader interface {
	// FindSubOrgByID retrieves a specific sub-organization by its identifier.
	FindSubOrgByID(ctx context.Context, subOrgID string) (*domain.SubOrganization, error)

	// FindSubOrgsByIDs retrieves multiple sub-organizations keyed by id.
	FindSubOrgsByIDs(ctx context.Context, subOrgIDs []string) (map[string]domain.SubOrganization, error)

	// ListSubOrgs retrieves the full catalog. The catalog is small and fixed,
	// so no pagination applies.
	ListSubOrgs(ctx context.Context) ([]domain.SubOrganization, error)
}

// SubOrgWriter defines admin write operations for sub-organizations.
// BudgetSpent is deliberately absent here; see SubOrgBudgetWriter.
type SubOrgWriter interface {
	// UpdateBudgetAllocated sets the admin-managed allocated budget.
	UpdateBudgetAllocated(ctx context.Context, subOrgID string, allocated decimal.Decimal, updatedBy string, now time.Time) error
}

// SubOrgBudgetWriter is the write capability for the derived BudgetSpent
// aggregate. Only the reconciliation service receives this interface; the
// split keeps every other component on a read-only view of the aggregate.
type SubOrgBudgetWriter interface {
	// UpdateBudgetSpent overwrites the derived spent figure.
	UpdateBudgetSpent(ctx context.Context, subOrgID string, spent decimal.Decimal, now time.Time) error
}

// SubOrgRepositoryFacade combines all sub-organization repository interfaces.
type SubOrgRepositoryFacade interface {
	SubOrgReader
	SubOrgWriter
	SubOrgBudgetWriter
}
