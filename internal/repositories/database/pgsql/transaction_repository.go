package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orgbooks/po_budget_app/internal/apperrors"
	"github.com/orgbooks/po_budget_app/internal/core/domain"
	portsrepo "github.com/orgbooks/po_budget_app/internal/core/ports/repositories"
	"github.com/orgbooks/po_budget_app/internal/utils/pagination"
)

// PgxTransactionRepository persists transactions. The allocations and
// po_links slices live in JSONB columns and are replaced wholesale, so every
// write is a single-row statement.
type PgxTransactionRepository struct {
	db *pgxpool.Pool
}

func newPgxTransactionRepository(db *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{db: db}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `
	transaction_id, post_date, description, debit_amount,
	sub_org_id, sub_org_name, allocations,
	linked_po_id, linked_po_name, po_links,
	notes, receipt_url, receipt_file_name, status,
	created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	allocations, err := marshalNullable(txn.Allocations)
	if err != nil {
		return fmt.Errorf("failed to encode allocations: %w", err)
	}
	poLinks, err := marshalNullable(txn.POLinks)
	if err != nil {
		return fmt.Errorf("failed to encode po links: %w", err)
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err = r.db.Exec(ctx, query,
		txn.TransactionID,
		txn.PostDate,
		txn.Description,
		txn.DebitAmount,
		nullableString(txn.SubOrgID),
		nullableString(txn.SubOrgName),
		allocations,
		nullableString(txn.LinkedPOID),
		nullableString(txn.LinkedPOName),
		poLinks,
		txn.Notes,
		txn.ReceiptURL,
		txn.ReceiptFileName,
		string(txn.Status),
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	txn, err := scanTransaction(r.db.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find transaction %s: %w", transactionID, err)
	}
	return txn, nil
}

func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	args := []interface{}{}
	if nextToken != nil && *nextToken != "" {
		postDate, createdAt, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query += ` WHERE (post_date, created_at) < ($1, $2)`
		args = append(args, postDate, createdAt)
	}
	// Fetch one extra row to know whether another page exists.
	query += fmt.Sprintf(` ORDER BY post_date DESC, created_at DESC LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, *txn)
	}
	if rows.Err() != nil {
		return nil, nil, fmt.Errorf("error iterating transaction rows: %w", rows.Err())
	}

	var token *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		t := pagination.EncodeToken(last.PostDate, last.CreatedAt)
		token = &t
	}
	return txns, token, nil
}

func (r *PgxTransactionRepository) ListAllTransactions(ctx context.Context) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY post_date DESC, created_at DESC;`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all transactions: %w", err)
	}
	defer rows.Close()

	txns := []domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, *txn)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", rows.Err())
	}
	return txns, nil
}

func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, transactionID string, update domain.TransactionUpdate, updatedBy string) error {
	sets := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.PostDate != nil {
		add("post_date", *update.PostDate)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.DebitAmount != nil {
		add("debit_amount", *update.DebitAmount)
	}
	if update.ClearLegacySubOrg {
		sets = append(sets, "sub_org_id = NULL", "sub_org_name = NULL")
	} else {
		if update.SubOrgID != nil {
			add("sub_org_id", nullableString(*update.SubOrgID))
		}
		if update.SubOrgName != nil {
			add("sub_org_name", nullableString(*update.SubOrgName))
		}
	}
	if update.Allocations != nil {
		encoded, err := marshalNullable(*update.Allocations)
		if err != nil {
			return fmt.Errorf("failed to encode allocations: %w", err)
		}
		add("allocations", encoded)
	}
	if update.ClearLegacyPOLink {
		sets = append(sets, "linked_po_id = NULL", "linked_po_name = NULL")
	}
	if update.POLinks != nil {
		encoded, err := marshalNullable(*update.POLinks)
		if err != nil {
			return fmt.Errorf("failed to encode po links: %w", err)
		}
		add("po_links", encoded)
	}
	if update.Notes != nil {
		add("notes", *update.Notes)
	}
	if update.ReceiptURL != nil {
		add("receipt_url", *update.ReceiptURL)
	}
	if update.ReceiptFileName != nil {
		add("receipt_file_name", *update.ReceiptFileName)
	}
	if update.Status != nil {
		add("status", string(*update.Status))
	}

	if len(sets) == 0 {
		return nil
	}
	add("last_updated_at", time.Now().UTC())
	add("last_updated_by", updatedBy)

	args = append(args, transactionID)
	query := fmt.Sprintf(`UPDATE transactions SET %s WHERE transaction_id = $%d;`,
		strings.Join(sets, ", "), len(args))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// scanTransaction reads one row from either QueryRow or rows iteration.
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn          domain.Transaction
		subOrgID     *string
		subOrgName   *string
		linkedPOID   *string
		linkedPOName *string
		allocations  []byte
		poLinks      []byte
		status       string
	)
	err := row.Scan(
		&txn.TransactionID,
		&txn.PostDate,
		&txn.Description,
		&txn.DebitAmount,
		&subOrgID,
		&subOrgName,
		&allocations,
		&linkedPOID,
		&linkedPOName,
		&poLinks,
		&txn.Notes,
		&txn.ReceiptURL,
		&txn.ReceiptFileName,
		&status,
		&txn.CreatedAt,
		&txn.CreatedBy,
		&txn.LastUpdatedAt,
		&txn.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	txn.SubOrgID = derefString(subOrgID)
	txn.SubOrgName = derefString(subOrgName)
	txn.LinkedPOID = derefString(linkedPOID)
	txn.LinkedPOName = derefString(linkedPOName)
	txn.Status = domain.TransactionStatus(status)

	if len(allocations) > 0 {
		if err := json.Unmarshal(allocations, &txn.Allocations); err != nil {
			return nil, fmt.Errorf("failed to decode allocations: %w", err)
		}
	}
	if len(poLinks) > 0 {
		if err := json.Unmarshal(poLinks, &txn.POLinks); err != nil {
			return nil, fmt.Errorf("failed to decode po links: %w", err)
		}
	}
	return &txn, nil
}

// marshalNullable encodes a slice for a JSONB column, mapping an empty slice
// to NULL so emptiness and absence look the same in storage.
func marshalNullable[T any](items []T) ([]byte, error) {
	if len(items) == 0 {
		return nil, nil
	}
	return json.Marshal(items)
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
