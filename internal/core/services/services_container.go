package services

import (
	portsrepo "github.com/orgbooks/po_budget_app/internal/core/ports/repositories"
	portssvc "github.com/orgbooks/po_budget_app/internal/core/ports/services"
)

// NewServiceContainer wires all application services. Construction order
// matters: the reconciliation engine is built first, since every
// transaction-mutating service triggers it, and it alone receives the
// budgetSpent write capability.
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	userSvc := NewUserService(repos.UserRepo)
	reconciliationSvc := NewReconciliationService(repos.TransactionRepo, repos.SubOrgRepo, repos.SubOrgRepo)
	subOrgSvc := NewSubOrgService(repos.SubOrgRepo, repos.SubOrgRepo, userSvc)
	transactionSvc := NewTransactionService(repos.TransactionRepo, repos.SubOrgRepo, reconciliationSvc)
	linkingSvc := NewLinkingService(repos.TransactionRepo, repos.PORepo, reconciliationSvc)
	poSvc := NewPurchaseOrderService(repos.PORepo, repos.SubOrgRepo, userSvc)

	return &portssvc.ServiceContainer{
		Transaction:    transactionSvc,
		Linking:        linkingSvc,
		Reconciliation: reconciliationSvc,
		SubOrg:         subOrgSvc,
		PurchaseOrder:  poSvc,
		User:           userSvc,
	}
}
