package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orgbooks/po_budget_app/internal/apperrors"
	"github.com/orgbooks/po_budget_app/internal/core/domain"
	portsrepo "github.com/orgbooks/po_budget_app/internal/core/ports/repositories"
)

// PgxPurchaseOrderRepository persists purchase orders. Line items and
// organization allocations live in JSONB columns and are replaced wholesale
// with the rest of the row.
type PgxPurchaseOrderRepository struct {
	db *pgxpool.Pool
}

func newPgxPurchaseOrderRepository(db *pgxpool.Pool) portsrepo.PurchaseOrderRepositoryFacade {
	return &PgxPurchaseOrderRepository{db: db}
}

var _ portsrepo.PurchaseOrderRepositoryFacade = (*PgxPurchaseOrderRepository)(nil)

const poColumns = `
	po_id, name, creator_id, creator_name, status,
	sub_org_id, sub_org_name, organizations,
	line_items, total_amount,
	special_request, over_budget_justification, admin_comments,
	created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxPurchaseOrderRepository) SavePO(ctx context.Context, po domain.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (` + poColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	args, err := poArgs(po)
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save purchase order: %w", err)
	}
	return nil
}

func (r *PgxPurchaseOrderRepository) FindPOByID(ctx context.Context, poID string) (*domain.PurchaseOrder, error) {
	query := `SELECT ` + poColumns + ` FROM purchase_orders WHERE po_id = $1;`
	po, err := scanPO(r.db.QueryRow(ctx, query, poID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find purchase order %s: %w", poID, err)
	}
	return po, nil
}

func (r *PgxPurchaseOrderRepository) ListPOs(ctx context.Context, status domain.POStatus, limit int, offset int) ([]domain.PurchaseOrder, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + poColumns + ` FROM purchase_orders`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase orders: %w", err)
	}
	defer rows.Close()

	pos := []domain.PurchaseOrder{}
	for rows.Next() {
		po, err := scanPO(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase order row: %w", err)
		}
		pos = append(pos, *po)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating purchase order rows: %w", rows.Err())
	}
	return pos, nil
}

// UpdatePO rewrites the full row. The service layer loads, validates, and
// hands back the complete record, so no per-column diffing happens here.
func (r *PgxPurchaseOrderRepository) UpdatePO(ctx context.Context, po domain.PurchaseOrder) error {
	query := `
		UPDATE purchase_orders SET
			name = $2, creator_id = $3, creator_name = $4, status = $5,
			sub_org_id = $6, sub_org_name = $7, organizations = $8,
			line_items = $9, total_amount = $10,
			special_request = $11, over_budget_justification = $12, admin_comments = $13,
			created_at = $14, created_by = $15, last_updated_at = $16, last_updated_by = $17
		WHERE po_id = $1;
	`
	args, err := poArgs(po)
	if err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update purchase order %s: %w", po.POID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxPurchaseOrderRepository) DeletePO(ctx context.Context, poID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM purchase_orders WHERE po_id = $1;`, poID)
	if err != nil {
		return fmt.Errorf("failed to delete purchase order %s: %w", poID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func poArgs(po domain.PurchaseOrder) ([]interface{}, error) {
	organizations, err := marshalNullable(po.Organizations)
	if err != nil {
		return nil, fmt.Errorf("failed to encode organizations: %w", err)
	}
	lineItems, err := json.Marshal(po.LineItems)
	if err != nil {
		return nil, fmt.Errorf("failed to encode line items: %w", err)
	}
	return []interface{}{
		po.POID,
		po.Name,
		po.CreatorID,
		po.CreatorName,
		string(po.Status),
		nullableString(po.SubOrgID),
		nullableString(po.SubOrgName),
		organizations,
		lineItems,
		po.TotalAmount,
		po.SpecialRequest,
		po.OverBudgetJustification,
		po.AdminComments,
		po.CreatedAt,
		po.CreatedBy,
		po.LastUpdatedAt,
		po.LastUpdatedBy,
	}, nil
}

func scanPO(row pgx.Row) (*domain.PurchaseOrder, error) {
	var (
		po            domain.PurchaseOrder
		status        string
		subOrgID      *string
		subOrgName    *string
		organizations []byte
		lineItems     []byte
	)
	err := row.Scan(
		&po.POID,
		&po.Name,
		&po.CreatorID,
		&po.CreatorName,
		&status,
		&subOrgID,
		&subOrgName,
		&organizations,
		&lineItems,
		&po.TotalAmount,
		&po.SpecialRequest,
		&po.OverBudgetJustification,
		&po.AdminComments,
		&po.CreatedAt,
		&po.CreatedBy,
		&po.LastUpdatedAt,
		&po.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	po.Status = domain.POStatus(status)
	po.SubOrgID = derefString(subOrgID)
	po.SubOrgName = derefString(subOrgName)

	if len(organizations) > 0 {
		if err := json.Unmarshal(organizations, &po.Organizations); err != nil {
			return nil, fmt.Errorf("failed to decode organizations: %w", err)
		}
	}
	if len(lineItems) > 0 {
		if err := json.Unmarshal(lineItems, &po.LineItems); err != nil {
			return nil, fmt.Errorf("failed to decode line items: %w", err)
		}
	}
	return &po, nil
}
