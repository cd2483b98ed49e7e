package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orgbooks/po_budget_app/internal/apperrors"
	"github.com/orgbooks/po_budget_app/internal/core/domain"
	portsrepo "github.com/orgbooks/po_budget_app/internal/core/ports/repositories"
	portssvc "github.com/orgbooks/po_budget_app/internal/core/ports/services"
	"github.com/orgbooks/po_budget_app/internal/dto"
	"github.com/orgbooks/po_budget_app/internal/middleware"
	"github.com/orgbooks/po_budget_app/internal/utils/allocation"
)

var (
	ErrDebitNotPositive = errors.New("transaction debit amount must be positive")
	ErrAmbiguousTarget  = errors.New("transaction cannot carry both a legacy sub-organization and an allocation split")
)

// transactionService owns bank transaction CRUD and the allocation edits on
// them. Every committed mutation triggers a reconciliation pass; a failed
// pass is surfaced as apperrors.ErrReconciliation next to the committed
// result so callers can warn instead of failing the mutation.
type transactionService struct {
	txnRepo    portsrepo.TransactionRepositoryFacade
	subOrgRepo portsrepo.SubOrgReader
	reconciler portssvc.ReconciliationSvc
}

// NewTransactionService creates a new transaction service.
func NewTransactionService(
	txnRepo portsrepo.TransactionRepositoryFacade,
	subOrgRepo portsrepo.SubOrgReader,
	reconciler portssvc.ReconciliationSvc,
) portssvc.TransactionSvcFacade {
	return &transactionService{
		txnRepo:    txnRepo,
		subOrgRepo: subOrgRepo,
		reconciler: reconciler,
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// GetTransactionByID implements portssvc.TransactionReaderSvc.
func (s *transactionService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

// ListTransactions implements portssvc.TransactionReaderSvc.
func (s *transactionService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	txns, nextToken, err := s.txnRepo.ListTransactions(ctx, limit, params.NextToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nextToken, nil
}

// CreateTransaction implements portssvc.TransactionWriterSvc.
func (s *transactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.DebitAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: got %s", ErrDebitNotPositive, req.DebitAmount.StringFixed(2))
	}
	if req.SubOrgID != "" && len(req.Allocations) > 0 {
		return nil, fmt.Errorf("%w", ErrAmbiguousTarget)
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		PostDate:        req.PostDate,
		Description:     req.Description,
		DebitAmount:     req.DebitAmount,
		Notes:           req.Notes,
		ReceiptURL:      req.ReceiptURL,
		ReceiptFileName: req.ReceiptFileName,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if req.SubOrgID != "" {
		subOrg, err := s.subOrgRepo.FindSubOrgByID(ctx, req.SubOrgID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: sub-organization %s", apperrors.ErrNotFound, req.SubOrgID)
			}
			return nil, fmt.Errorf("failed to resolve sub-organization %s: %w", req.SubOrgID, err)
		}
		txn.SubOrgID = subOrg.SubOrgID
		txn.SubOrgName = subOrg.Name
	}

	if len(req.Allocations) > 0 {
		allocations, err := s.buildAllocations(ctx, req.Allocations, req.DebitAmount)
		if err != nil {
			return nil, err
		}
		txn.Allocations = allocations
	}

	txn.Status = allocationStatus(txn)

	if err := s.txnRepo.SaveTransaction(ctx, txn); err != nil {
		logger.Error("Failed to save transaction", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return &txn, s.reconcileAfterMutation(ctx, "create")
}

// UpdateTransaction implements portssvc.TransactionWriterSvc. Nil request
// fields are omitted from the write entirely rather than written as nulls.
func (s *transactionService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, requestingUserID string) (*domain.Transaction, error) {
	existing, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	update := domain.TransactionUpdate{
		PostDate:        req.PostDate,
		Description:     req.Description,
		Notes:           req.Notes,
		ReceiptURL:      req.ReceiptURL,
		ReceiptFileName: req.ReceiptFileName,
	}

	effectiveDebit := existing.DebitAmount
	if req.DebitAmount != nil {
		if req.DebitAmount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: got %s", ErrDebitNotPositive, req.DebitAmount.StringFixed(2))
		}
		effectiveDebit = *req.DebitAmount
		update.DebitAmount = req.DebitAmount
	}

	switch {
	case req.Allocations != nil:
		allocations, err := s.buildAllocations(ctx, *req.Allocations, effectiveDebit)
		if err != nil {
			return nil, err
		}
		update.Allocations = &allocations
		// Once a split exists the legacy scalar is permanently retired.
		update.ClearLegacySubOrg = len(allocations) > 0

	case req.DebitAmount != nil && len(existing.Allocations) > 0:
		// The parent total changed: percentages are derived from it and
		// must be recomputed, and the stored amounts must still fit.
		entries := allocationEntries(existing.Allocations)
		if err := allocation.ValidateSet(entries, effectiveDebit, false); err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		recomputed := make([]domain.TransactionAllocation, len(existing.Allocations))
		for i, a := range existing.Allocations {
			a.Percentage = allocation.Percentage(a.Amount, effectiveDebit)
			recomputed[i] = a
		}
		update.Allocations = &recomputed
	}

	merged := mergeTransaction(*existing, update)
	status := allocationStatus(merged)
	update.Status = &status
	merged.Status = status

	now := time.Now().UTC()
	if err := s.txnRepo.UpdateTransaction(ctx, transactionID, update, requestingUserID); err != nil {
		return nil, fmt.Errorf("failed to update transaction %s: %w", transactionID, err)
	}
	merged.LastUpdatedAt = now
	merged.LastUpdatedBy = requestingUserID

	return &merged, s.reconcileAfterMutation(ctx, "update")
}

// ReplaceAllocations implements portssvc.TransactionWriterSvc. The set is
// replaced wholesale, never patched, so its sum stays consistent with the
// debit amount. An empty request marks the transaction explicitly
// unallocated.
func (s *transactionService) ReplaceAllocations(ctx context.Context, transactionID string, req dto.ReplaceAllocationsRequest, requestingUserID string) (*domain.Transaction, error) {
	existing, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if req.IsEqualSplit() && len(req.Allocations) > 0 {
		return nil, fmt.Errorf("%w: request carries both manual amounts and an equal-split target list", apperrors.ErrValidation)
	}

	inputs := req.Allocations
	if req.IsEqualSplit() {
		shares := allocation.DistributeEqually(existing.DebitAmount, len(req.SplitEquallyAmong))
		inputs = make([]dto.AllocationInput, len(shares))
		for i, share := range shares {
			inputs[i] = dto.AllocationInput{SubOrgID: req.SplitEquallyAmong[i], Amount: share.Amount}
		}
	}

	allocations, err := s.buildAllocations(ctx, inputs, existing.DebitAmount)
	if err != nil {
		return nil, err
	}

	update := domain.TransactionUpdate{
		Allocations:       &allocations,
		ClearLegacySubOrg: len(allocations) > 0,
	}
	merged := mergeTransaction(*existing, update)
	status := allocationStatus(merged)
	update.Status = &status
	merged.Status = status

	if err := s.txnRepo.UpdateTransaction(ctx, transactionID, update, requestingUserID); err != nil {
		return nil, fmt.Errorf("failed to replace allocations on transaction %s: %w", transactionID, err)
	}

	return &merged, s.reconcileAfterMutation(ctx, "allocation replacement")
}

// DeleteTransaction implements portssvc.TransactionWriterSvc.
func (s *transactionService) DeleteTransaction(ctx context.Context, transactionID string, requestingUserID string) error {
	if _, err := s.txnRepo.FindTransactionByID(ctx, transactionID); err != nil {
		return err
	}
	if err := s.txnRepo.DeleteTransaction(ctx, transactionID); err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	return s.reconcileAfterMutation(ctx, "delete")
}

// buildAllocations validates allocation inputs against the parent total and
// produces domain allocations with generated ids, denormalized names, and
// derived percentages.
func (s *transactionService) buildAllocations(ctx context.Context, inputs []dto.AllocationInput, total decimal.Decimal) ([]domain.TransactionAllocation, error) {
	if len(inputs) == 0 {
		return []domain.TransactionAllocation{}, nil
	}

	entries := make([]allocation.Entry, len(inputs))
	subOrgIDs := make([]string, len(inputs))
	for i, in := range inputs {
		entries[i] = allocation.Entry{TargetID: in.SubOrgID, Amount: in.Amount}
		subOrgIDs[i] = in.SubOrgID
	}
	if err := allocation.ValidateSet(entries, total, false); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	subOrgs, err := s.subOrgRepo.FindSubOrgsByIDs(ctx, subOrgIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sub-organizations: %w", err)
	}

	allocations := make([]domain.TransactionAllocation, len(inputs))
	for i, in := range inputs {
		subOrg, found := subOrgs[in.SubOrgID]
		if !found {
			return nil, fmt.Errorf("%w: sub-organization %s", apperrors.ErrNotFound, in.SubOrgID)
		}
		allocations[i] = domain.TransactionAllocation{
			AllocationID: uuid.NewString(),
			SubOrgID:     subOrg.SubOrgID,
			SubOrgName:   subOrg.Name,
			Amount:       in.Amount,
			Percentage:   allocation.Percentage(in.Amount, total),
		}
	}
	return allocations, nil
}

// reconcileAfterMutation runs a recompute pass for an already-committed
// mutation. Failures are logged and wrapped in apperrors.ErrReconciliation;
// there is no rollback of the mutation.
func (s *transactionService) reconcileAfterMutation(ctx context.Context, action string) error {
	if err := s.reconciler.Reconcile(ctx); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Reconciliation failed after transaction mutation",
			slog.String("action", action),
			slog.String("error", err.Error()))
		if errors.Is(err, apperrors.ErrReconciliation) {
			return err
		}
		return fmt.Errorf("%w: %v", apperrors.ErrReconciliation, err)
	}
	return nil
}

// allocationEntries extracts validation entries from stored allocations.
func allocationEntries(allocations []domain.TransactionAllocation) []allocation.Entry {
	entries := make([]allocation.Entry, len(allocations))
	for i, a := range allocations {
		entries[i] = allocation.Entry{TargetID: a.SubOrgID, Amount: a.Amount}
	}
	return entries
}

// allocationStatus derives the transaction status from how much of the
// debit amount is attributed. A single target at 100% and the legacy scalar
// form are indistinguishable here.
func allocationStatus(txn domain.Transaction) domain.TransactionStatus {
	attributed := txn.AllocatedTotal()
	if attributed.IsPositive() && allocation.IsFullyAllocated(attributed, txn.DebitAmount) {
		return domain.TransactionAllocated
	}
	return domain.TransactionPending
}

// mergeTransaction applies an update to a copy of the stored transaction so
// services can return the post-write state without a re-read.
func mergeTransaction(txn domain.Transaction, update domain.TransactionUpdate) domain.Transaction {
	if update.PostDate != nil {
		txn.PostDate = *update.PostDate
	}
	if update.Description != nil {
		txn.Description = *update.Description
	}
	if update.DebitAmount != nil {
		txn.DebitAmount = *update.DebitAmount
	}
	if update.SubOrgID != nil {
		txn.SubOrgID = *update.SubOrgID
	}
	if update.SubOrgName != nil {
		txn.SubOrgName = *update.SubOrgName
	}
	if update.Allocations != nil {
		txn.Allocations = *update.Allocations
	}
	if update.POLinks != nil {
		txn.POLinks = *update.POLinks
	}
	if update.ClearLegacySubOrg {
		txn.SubOrgID = ""
		txn.SubOrgName = ""
	}
	if update.ClearLegacyPOLink {
		txn.LinkedPOID = ""
		txn.LinkedPOName = ""
	}
	if update.Notes != nil {
		txn.Notes = *update.Notes
	}
	if update.ReceiptURL != nil {
		txn.ReceiptURL = *update.ReceiptURL
	}
	if update.ReceiptFileName != nil {
		txn.ReceiptFileName = *update.ReceiptFileName
	}
	if update.Status != nil {
		txn.Status = *update.Status
	}
	return txn
}
