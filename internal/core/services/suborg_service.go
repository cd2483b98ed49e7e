package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orgbooks/po_budget_app/internal/apperrors"
	"github.com/orgbooks/po_budget_app/internal/core/domain"
	portsrepo "github.com/orgbooks/po_budget_app/internal/core/ports/repositories"
	portssvc "github.com/orgbooks/po_budget_app/internal/core/ports/services"
	"github.com/orgbooks/po_budget_app/internal/dto"
)

// ErrNegativeBudget indicates an attempt to set a negative allocated budget.
var ErrNegativeBudget = errors.New("budgetAllocated cannot be negative")

// subOrgService manages the fixed sub-organization catalog. It holds a
// SubOrgWriter only; the budgetSpent aggregate is out of its reach.
type subOrgService struct {
	subOrgReader portsrepo.SubOrgReader
	subOrgWriter portsrepo.SubOrgWriter
	userSvc      portssvc.UserReaderSvc
}

// NewSubOrgService creates a new sub-organization service.
func NewSubOrgService(
	subOrgReader portsrepo.SubOrgReader,
	subOrgWriter portsrepo.SubOrgWriter,
	userSvc portssvc.UserReaderSvc,
) portssvc.SubOrgSvcFacade {
	return &subOrgService{
		subOrgReader: subOrgReader,
		subOrgWriter: subOrgWriter,
		userSvc:      userSvc,
	}
}

var _ portssvc.SubOrgSvcFacade = (*subOrgService)(nil)

// GetSubOrgByID implements portssvc.SubOrgReaderSvc.
func (s *subOrgService) GetSubOrgByID(ctx context.Context, subOrgID string) (*domain.SubOrganization, error) {
	return s.subOrgReader.FindSubOrgByID(ctx, subOrgID)
}

// ListSubOrgs implements portssvc.SubOrgReaderSvc.
func (s *subOrgService) ListSubOrgs(ctx context.Context) ([]domain.SubOrganization, error) {
	return s.subOrgReader.ListSubOrgs(ctx)
}

// UpdateBudgetAllocated implements portssvc.SubOrgAdminSvc.
func (s *subOrgService) UpdateBudgetAllocated(ctx context.Context, subOrgID string, req dto.UpdateSubOrgBudgetRequest, requestingUserID string) (*domain.SubOrganization, error) {
	if err := requireAdmin(ctx, s.userSvc, requestingUserID); err != nil {
		return nil, err
	}
	if req.BudgetAllocated.IsNegative() {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrNegativeBudget)
	}

	existing, err := s.subOrgReader.FindSubOrgByID(ctx, subOrgID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.subOrgWriter.UpdateBudgetAllocated(ctx, subOrgID, req.BudgetAllocated, requestingUserID, now); err != nil {
		return nil, fmt.Errorf("failed to update budget for sub-organization %s: %w", subOrgID, err)
	}

	updated := *existing
	updated.BudgetAllocated = req.BudgetAllocated
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = requestingUserID
	return &updated, nil
}
