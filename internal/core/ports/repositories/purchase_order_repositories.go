package repositories

import (
	"context"

	"github.com/orgbooks/po_budget_app/internal/core/domain"
)

// PurchaseOrderReader defines read operations for purchase order data.
type PurchaseOrderReader interface {
	// FindPOByID retrieves a specific purchase order by its identifier.
	FindPOByID(ctx context.Context, poID string) (*domain.PurchaseOrder, error)

	// ListPOs retrieves a paginated list of purchase orders, newest first.
	// An empty status filters nothing.
	ListPOs(ctx context.Context, status domain.POStatus, limit int, offset int) ([]domain.PurchaseOrder, error)
}

// PurchaseOrderWriter defines write operations for purchase order data.
type PurchaseOrderWriter interface {
	// SavePO persists a new purchase order.
	SavePO(ctx context.Context, po domain.PurchaseOrder) error

	// UpdatePO rewrites a purchase order's full row. Content edits and
	// status transitions both land here; the service layer has already
	// loaded and revalidated the record.
	UpdatePO(ctx context.Context, po domain.PurchaseOrder) error

	// DeletePO removes a purchase order permanently. Deleting a purchase
	// order has no reconciliation side effect: POs do not participate in
	// the budgetSpent aggregate.
	DeletePO(ctx context.Context, poID string) error
}

// PurchaseOrderRepositoryFacade combines all purchase order repository interfaces.
type PurchaseOrderRepositoryFacade interface {
	PurchaseOrderReader
	PurchaseOrderWriter
}
