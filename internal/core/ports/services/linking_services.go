package services

import (
	"context"

	"github.com/orgbooks/po_budget_app/internal/core/domain"
	"github.com/orgbooks/po_budget_app/internal/dto"
)

// LinkingSvcFacade maintains the many-to-many relationship between a
// transaction and its purchase orders, migrating legacy one-to-one links
// into the multi-link shape lazily on read.
type LinkingSvcFacade interface {
	// ResolveLinks returns the transaction's links in the current
	// multi-link shape regardless of which legacy or current field
	// populated them. Idempotent: resolving an already-migrated record
	// yields the same list.
	ResolveLinks(ctx context.Context, transactionID string) ([]domain.POLink, error)

	// ApplyLinks replaces the link set wholesale and retires the legacy
	// scalar fields once a multi-link set exists.
	ApplyLinks(ctx context.Context, transactionID string, req dto.ReplaceLinksRequest, requestingUserID string) (*domain.Transaction, error)
}
