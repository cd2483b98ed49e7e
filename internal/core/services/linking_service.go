package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orgbooks/po_budget_app/internal/apperrors"
	"github.com/orgbooks/po_budget_app/internal/core/domain"
	portsrepo "github.com/orgbooks/po_budget_app/internal/core/ports/repositories"
	portssvc "github.com/orgbooks/po_budget_app/internal/core/ports/services"
	"github.com/orgbooks/po_budget_app/internal/dto"
	"github.com/orgbooks/po_budget_app/internal/utils/allocation"
)

// migratedLinkPrefix marks links synthesized from the legacy scalar fields,
// as opposed to user-authored ones, so downstream code can tell them apart.
const migratedLinkPrefix = "migrated-"

// linkingService normalizes a transaction's purchase-order references to the
// multi-link shape regardless of which legacy or current field populated
// them, and manages edits to that list.
type linkingService struct {
	txnRepo    portsrepo.TransactionRepositoryFacade
	poRepo     portsrepo.PurchaseOrderReader
	reconciler portssvc.ReconciliationSvc
}

// NewLinkingService creates a new linking service.
func NewLinkingService(
	txnRepo portsrepo.TransactionRepositoryFacade,
	poRepo portsrepo.PurchaseOrderReader,
	reconciler portssvc.ReconciliationSvc,
) portssvc.LinkingSvcFacade {
	return &linkingService{
		txnRepo:    txnRepo,
		poRepo:     poRepo,
		reconciler: reconciler,
	}
}

var _ portssvc.LinkingSvcFacade = (*linkingService)(nil)

// ResolveLinks implements portssvc.LinkingSvcFacade.
func (s *linkingService) ResolveLinks(ctx context.Context, transactionID string) ([]domain.POLink, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	return resolveLinks(txn), nil
}

// resolveLinks is the lazy legacy migration: a populated poLinks slice wins
// verbatim; a legacy scalar link is synthesized into a single 100% link;
// anything else is an empty list. Idempotent: synthesized output carries the
// migrated id prefix but is never re-migrated because it is only produced
// when poLinks is empty.
func resolveLinks(txn *domain.Transaction) []domain.POLink {
	if len(txn.POLinks) > 0 {
		return txn.POLinks
	}
	if txn.LinkedPOID == "" {
		return []domain.POLink{}
	}
	name := txn.LinkedPOName
	if name == "" {
		name = "PO #" + strings.ToUpper(txn.LinkedPOID)
	}
	return []domain.POLink{{
		LinkID:     migratedLinkPrefix + txn.LinkedPOID,
		POID:       txn.LinkedPOID,
		POName:     name,
		Amount:     txn.DebitAmount,
		Percentage: decimal.NewFromInt(100),
	}}
}

// ApplyLinks implements portssvc.LinkingSvcFacade. Incomplete rows (zero
// amount or missing poId) are dropped silently before validation: the editor
// may legitimately leave blank rows while working. Once a non-empty link set
// is applied the legacy scalar fields are cleared for good.
func (s *linkingService) ApplyLinks(ctx context.Context, transactionID string, req dto.ReplaceLinksRequest, requestingUserID string) (*domain.Transaction, error) {
	existing, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	complete := make([]dto.POLinkInput, 0, len(req.Links))
	for _, in := range req.Links {
		if in.POID == "" || in.Amount.IsZero() {
			continue
		}
		complete = append(complete, in)
	}

	entries := make([]allocation.Entry, len(complete))
	for i, in := range complete {
		entries[i] = allocation.Entry{TargetID: in.POID, Amount: in.Amount}
	}
	if err := allocation.ValidateSet(entries, existing.DebitAmount, false); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	links := make([]domain.POLink, len(complete))
	for i, in := range complete {
		po, err := s.poRepo.FindPOByID(ctx, in.POID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: purchase order %s", apperrors.ErrNotFound, in.POID)
			}
			return nil, fmt.Errorf("failed to resolve purchase order %s: %w", in.POID, err)
		}
		links[i] = domain.POLink{
			LinkID:     uuid.NewString(),
			POID:       po.POID,
			POName:     po.Name,
			Amount:     in.Amount,
			Percentage: allocation.Percentage(in.Amount, existing.DebitAmount),
		}
	}

	update := domain.TransactionUpdate{
		POLinks:           &links,
		ClearLegacyPOLink: len(links) > 0,
	}
	if err := s.txnRepo.UpdateTransaction(ctx, transactionID, update, requestingUserID); err != nil {
		return nil, fmt.Errorf("failed to apply links on transaction %s: %w", transactionID, err)
	}

	merged := mergeTransaction(*existing, update)

	// Links do not move budget money, but every transaction mutation
	// triggers a pass.
	if err := s.reconciler.Reconcile(ctx); err != nil {
		if errors.Is(err, apperrors.ErrReconciliation) {
			return &merged, err
		}
		return &merged, fmt.Errorf("%w: %v", apperrors.ErrReconciliation, err)
	}
	return &merged, nil
}
