package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/orgbooks/po_budget_app/internal/apperrors"
	"github.com/orgbooks/po_budget_app/internal/core/domain"
	portsrepo "github.com/orgbooks/po_budget_app/internal/core/ports/repositories"
)

// PgxSubOrgRepository persists the sub-organization catalog. The catalog is
// seeded by migration; only the budget columns ever change.
type PgxSubOrgRepository struct {
	db *pgxpool.Pool
}

func newPgxSubOrgRepository(db *pgxpool.Pool) portsrepo.SubOrgRepositoryFacade {
	return &PgxSubOrgRepository{db: db}
}

var _ portsrepo.SubOrgRepositoryFacade = (*PgxSubOrgRepository)(nil)

const subOrgColumns = `
	sub_org_id, name, budget_allocated, budget_spent,
	created_at, created_by, last_updated_at, last_updated_by`

func (r *PgxSubOrgRepository) FindSubOrgByID(ctx context.Context, subOrgID string) (*domain.SubOrganization, error) {
	query := `SELECT ` + subOrgColumns + ` FROM sub_organizations WHERE sub_org_id = $1;`
	subOrg, err := scanSubOrg(r.db.QueryRow(ctx, query, subOrgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find sub-organization %s: %w", subOrgID, err)
	}
	return subOrg, nil
}

func (r *PgxSubOrgRepository) FindSubOrgsByIDs(ctx context.Context, subOrgIDs []string) (map[string]domain.SubOrganization, error) {
	if len(subOrgIDs) == 0 {
		return map[string]domain.SubOrganization{}, nil
	}

	query := `SELECT ` + subOrgColumns + ` FROM sub_organizations WHERE sub_org_id = ANY($1);`
	rows, err := r.db.Query(ctx, query, subOrgIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query sub-organizations by ids: %w", err)
	}
	defer rows.Close()

	result := make(map[string]domain.SubOrganization, len(subOrgIDs))
	for rows.Next() {
		subOrg, err := scanSubOrg(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sub-organization row: %w", err)
		}
		result[subOrg.SubOrgID] = *subOrg
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating sub-organization rows: %w", rows.Err())
	}
	return result, nil
}

func (r *PgxSubOrgRepository) ListSubOrgs(ctx context.Context) ([]domain.SubOrganization, error) {
	query := `SELECT ` + subOrgColumns + ` FROM sub_organizations ORDER BY name ASC;`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sub-organizations: %w", err)
	}
	defer rows.Close()

	subOrgs := []domain.SubOrganization{}
	for rows.Next() {
		subOrg, err := scanSubOrg(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sub-organization row: %w", err)
		}
		subOrgs = append(subOrgs, *subOrg)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating sub-organization rows: %w", rows.Err())
	}
	return subOrgs, nil
}

func (r *PgxSubOrgRepository) UpdateBudgetAllocated(ctx context.Context, subOrgID string, allocated decimal.Decimal, updatedBy string, now time.Time) error {
	query := `
		UPDATE sub_organizations
		SET budget_allocated = $1, last_updated_at = $2, last_updated_by = $3
		WHERE sub_org_id = $4;
	`
	tag, err := r.db.Exec(ctx, query, allocated, now, updatedBy, subOrgID)
	if err != nil {
		return fmt.Errorf("failed to update budget_allocated for %s: %w", subOrgID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateBudgetSpent writes the derived aggregate. The updater column stays
// untouched: reconciliation is a system process, not a user edit.
func (r *PgxSubOrgRepository) UpdateBudgetSpent(ctx context.Context, subOrgID string, spent decimal.Decimal, now time.Time) error {
	query := `
		UPDATE sub_organizations
		SET budget_spent = $1, last_updated_at = $2
		WHERE sub_org_id = $3;
	`
	tag, err := r.db.Exec(ctx, query, spent, now, subOrgID)
	if err != nil {
		return fmt.Errorf("failed to update budget_spent for %s: %w", subOrgID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanSubOrg(row pgx.Row) (*domain.SubOrganization, error) {
	var subOrg domain.SubOrganization
	err := row.Scan(
		&subOrg.SubOrgID,
		&subOrg.Name,
		&subOrg.BudgetAllocated,
		&subOrg.BudgetSpent,
		&subOrg.CreatedAt,
		&subOrg.CreatedBy,
		&subOrg.LastUpdatedAt,
		&subOrg.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &subOrg, nil
}
