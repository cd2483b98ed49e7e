package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orgbooks/po_budget_app/internal/apperrors"
	"github.com/orgbooks/po_budget_app/internal/core/domain"
	portsrepo "github.com/orgbooks/po_budget_app/internal/core/ports/repositories"
	portssvc "github.com/orgbooks/po_budget_app/internal/core/ports/services"
	"github.com/orgbooks/po_budget_app/internal/middleware"
	"github.com/orgbooks/po_budget_app/internal/utils/allocation"
)

// reconciliationService makes every sub-organization's budgetSpent equal the
// sum of transaction money attributed to it. It recomputes globally on every
// pass rather than incrementally: O(all transactions) per mutation, but
// idempotent and self-healing, so any drift left by a failed pass is
// corrected by the next one.
//
// The pass is not atomic with the mutation that triggered it, and each
// sub-organization write is independent: a failure part-way leaves the
// aggregate inconsistent until the next successful pass.
type reconciliationService struct {
	txnRepo      portsrepo.TransactionReader
	subOrgReader portsrepo.SubOrgReader
	budgetWriter portsrepo.SubOrgBudgetWriter
}

// NewReconciliationService creates the reconciliation engine. It is the only
// constructor handed a SubOrgBudgetWriter; everything else sees a read-only
// view of the budgetSpent aggregate.
func NewReconciliationService(
	txnRepo portsrepo.TransactionReader,
	subOrgReader portsrepo.SubOrgReader,
	budgetWriter portsrepo.SubOrgBudgetWriter,
) portssvc.ReconciliationSvc {
	return &reconciliationService{
		txnRepo:      txnRepo,
		subOrgReader: subOrgReader,
		budgetWriter: budgetWriter,
	}
}

var _ portssvc.ReconciliationSvc = (*reconciliationService)(nil)

// Reconcile implements portssvc.ReconciliationSvc.
func (s *reconciliationService) Reconcile(ctx context.Context) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	txns, err := s.txnRepo.ListAllTransactions(ctx)
	if err != nil {
		return fmt.Errorf("%w: loading transactions: %v", apperrors.ErrReconciliation, err)
	}
	subOrgs, err := s.subOrgReader.ListSubOrgs(ctx)
	if err != nil {
		return fmt.Errorf("%w: loading sub-organizations: %v", apperrors.ErrReconciliation, err)
	}

	spent := attributeSpend(txns)

	now := time.Now().UTC()
	var writeErrs []error
	updated := 0
	for _, so := range subOrgs {
		newSpent := spent[so.SubOrgID] // Zero value is decimal zero

		// Skip writes within the epsilon to avoid redundant update storms.
		if newSpent.Sub(so.BudgetSpent).Abs().LessThanOrEqual(allocation.AmountEpsilon) {
			continue
		}

		if err := s.budgetWriter.UpdateBudgetSpent(ctx, so.SubOrgID, newSpent, now); err != nil {
			// Each sub-org write is independent; keep going so the others
			// still converge.
			logger.Error("Failed to write budgetSpent",
				slog.String("sub_org_id", so.SubOrgID),
				slog.String("spent", newSpent.StringFixed(2)),
				slog.String("error", err.Error()))
			writeErrs = append(writeErrs, fmt.Errorf("sub-organization %s: %w", so.SubOrgID, err))
			continue
		}
		updated++
	}

	if len(writeErrs) > 0 {
		return fmt.Errorf("%w: %v", apperrors.ErrReconciliation, errors.Join(writeErrs...))
	}

	logger.Debug("Reconciliation pass completed",
		slog.Int("transactions", len(txns)),
		slog.Int("sub_orgs_updated", updated))
	return nil
}

// attributeSpend builds the subOrgID -> attributed amount map from the full
// transaction set. A split transaction contributes each allocation's amount;
// a legacy scalar target contributes the full debit amount.
func attributeSpend(txns []domain.Transaction) map[string]decimal.Decimal {
	spent := make(map[string]decimal.Decimal)
	for _, txn := range txns {
		if len(txn.Allocations) > 0 {
			for _, alloc := range txn.Allocations {
				spent[alloc.SubOrgID] = spent[alloc.SubOrgID].Add(alloc.Amount)
			}
			continue
		}
		if txn.SubOrgID != "" {
			spent[txn.SubOrgID] = spent[txn.SubOrgID].Add(txn.DebitAmount)
		}
	}
	return spent
}
