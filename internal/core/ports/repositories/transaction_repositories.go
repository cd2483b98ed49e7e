package repositories

import (
	"context"

	"github.com/orgbooks/po_budget_app/internal/core/domain"
)

// TransactionReader defines read operations for bank transaction data.
type TransactionReader interface {
	// FindTransactionByID retrieves a specific transaction by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a paginated list of transactions ordered by
	// post date (newest first) using token-based pagination. It returns the
	// transactions, a token for the next page, and an error.
	ListTransactions(ctx context.Context, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// ListAllTransactions retrieves the full transaction set. The
	// reconciliation engine recomputes budgets from this complete view.
	ListAllTransactions(ctx context.Context) ([]domain.Transaction, error)
}

// TransactionWriter defines write operations for bank transaction data.
type TransactionWriter interface {
	// SaveTransaction persists a new transaction.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// UpdateTransaction applies a partial update. Nil fields in the update
	// are omitted from the write; the Clear flags write explicit NULLs to
	// retire legacy scalar fields.
	UpdateTransaction(ctx context.Context, transactionID string, update domain.TransactionUpdate, updatedBy string) error

	// DeleteTransaction removes a transaction permanently.
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// TransactionRepositoryFacade combines all transaction repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
