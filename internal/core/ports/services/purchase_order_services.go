package services

import (
	"context"

	"github.com/orgbooks/po_budget_app/internal/core/domain"
	"github.com/orgbooks/po_budget_app/internal/dto"
)

// POReaderSvc defines read operations for purchase order data.
type POReaderSvc interface {
	// GetPOByID retrieves a specific purchase order.
	GetPOByID(ctx context.Context, poID string) (*domain.PurchaseOrder, error)

	// ListPOs retrieves a paginated list of purchase orders.
	ListPOs(ctx context.Context, params dto.ListPOsParams) ([]domain.PurchaseOrder, error)
}

// POWriterSvc defines content write operations. Content edits are only
// permitted while the purchase order is in an editable state (draft or
// declined).
type POWriterSvc interface {
	// CreatePO persists a new draft purchase order.
	CreatePO(ctx context.Context, req dto.CreatePORequest, creatorUserID string) (*domain.PurchaseOrder, error)

	// UpdatePO edits the content of an editable purchase order.
	UpdatePO(ctx context.Context, poID string, req dto.UpdatePORequest, requestingUserID string) (*domain.PurchaseOrder, error)

	// DeletePO removes a purchase order. No reconciliation side effect.
	DeletePO(ctx context.Context, poID string, requestingUserID string) error
}

// POTransitionSvc drives the approval state machine. Transitions out of
// PENDING_APPROVAL and beyond require the ADMIN role.
type POTransitionSvc interface {
	// SubmitPO moves draft -> pending_approval, sorting line items by
	// vendor for reviewers and requiring a fully-balanced organization
	// allocation.
	SubmitPO(ctx context.Context, poID string, requestingUserID string) (*domain.PurchaseOrder, error)

	// ApprovePO moves pending_approval -> approved.
	ApprovePO(ctx context.Context, poID string, requestingUserID string) (*domain.PurchaseOrder, error)

	// DeclinePO moves pending_approval -> declined with reviewer comments.
	DeclinePO(ctx context.Context, poID string, req dto.DeclinePORequest, requestingUserID string) (*domain.PurchaseOrder, error)

	// ResubmitPO moves declined -> draft, clearing admin comments.
	ResubmitPO(ctx context.Context, poID string, requestingUserID string) (*domain.PurchaseOrder, error)

	// MarkPOPurchasing moves approved -> pending_purchase.
	MarkPOPurchasing(ctx context.Context, poID string, requestingUserID string) (*domain.PurchaseOrder, error)

	// MarkPOPurchased moves pending_purchase -> purchased (terminal).
	MarkPOPurchased(ctx context.Context, poID string, requestingUserID string) (*domain.PurchaseOrder, error)
}

// POSvcFacade combines all purchase-order service interfaces.
type POSvcFacade interface {
	POReaderSvc
	POWriterSvc
	POTransitionSvc
}
