package services

import "context"

// ReconciliationSvc recomputes every sub-organization's budgetSpent from the
// full transaction set. It is the only component allowed to write that
// aggregate.
type ReconciliationSvc interface {
	// Reconcile runs one full recompute pass. It is idempotent and
	// self-healing: any prior drift is corrected by the next pass.
	Reconcile(ctx context.Context) error
}
