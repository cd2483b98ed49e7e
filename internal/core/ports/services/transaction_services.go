package services

import (
	"context"

	"github.com/orgbooks/po_budget_app/internal/core/domain"
	"github.com/orgbooks/po_budget_app/internal/dto"
)

// TransactionReaderSvc defines read operations for transaction data.
type TransactionReaderSvc interface {
	// GetTransactionByID retrieves a specific transaction by its ID.
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves a paginated list of transactions.
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) ([]domain.Transaction, *string, error)
}

// TransactionWriterSvc defines write operations for transaction data.
// Every mutation triggers a budget reconciliation pass after the write
// commits; a failed pass surfaces as apperrors.ErrReconciliation alongside
// the already-committed result.
type TransactionWriterSvc interface {
	// CreateTransaction persists a new transaction with its allocations.
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*domain.Transaction, error)

	// UpdateTransaction applies a partial update to a transaction.
	UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, requestingUserID string) (*domain.Transaction, error)

	// ReplaceAllocations replaces the allocation set wholesale.
	ReplaceAllocations(ctx context.Context, transactionID string, req dto.ReplaceAllocationsRequest, requestingUserID string) (*domain.Transaction, error)

	// DeleteTransaction removes a transaction.
	DeleteTransaction(ctx context.Context, transactionID string, requestingUserID string) error
}

// TransactionSvcFacade combines all transaction-related service interfaces.
type TransactionSvcFacade interface {
	TransactionReaderSvc
	TransactionWriterSvc
}
