package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/orgbooks/po_budget_app/internal/core/ports/repositories"
)

// NewRepositoryProvider builds all pgx-backed repositories over a shared pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TransactionRepo: newPgxTransactionRepository(dbPool),
		SubOrgRepo:      newPgxSubOrgRepository(dbPool),
		PORepo:          newPgxPurchaseOrderRepository(dbPool),
		UserRepo:        newPgxUserRepository(dbPool),
	}
}
