package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orgbooks/po_budget_app/internal/apperrors"
	"github.com/orgbooks/po_budget_app/internal/core/domain"
	portsrepo "github.com/orgbooks/po_budget_app/internal/core/ports/repositories"
	portssvc "github.com/orgbooks/po_budget_app/internal/core/ports/services"
	"github.com/orgbooks/po_budget_app/internal/dto"
	"github.com/orgbooks/po_budget_app/internal/utils/allocation"
)

// Service-specific errors for purchase order operations.
var (
	// ErrPONotEditable indicates a content edit on a purchase order that has
	// left the editable states (draft, declined).
	ErrPONotEditable = errors.New("purchase order is not editable in its current status")
	// ErrInvalidTransition indicates a status change the state machine does
	// not permit.
	ErrInvalidTransition = errors.New("invalid purchase order status transition")
	// ErrQuantityNotPositive indicates a line item with a zero or negative quantity.
	ErrQuantityNotPositive = errors.New("line item quantity must be positive")
)

// purchaseOrderService manages purchase order content and drives the approval
// state machine. Purchase orders never touch the budgetSpent aggregate, so no
// operation here triggers reconciliation.
type purchaseOrderService struct {
	poRepo     portsrepo.PurchaseOrderRepositoryFacade
	subOrgRepo portsrepo.SubOrgReader
	userSvc    portssvc.UserReaderSvc
}

// NewPurchaseOrderService creates a new purchase order service.
func NewPurchaseOrderService(
	poRepo portsrepo.PurchaseOrderRepositoryFacade,
	subOrgRepo portsrepo.SubOrgReader,
	userSvc portssvc.UserReaderSvc,
) portssvc.POSvcFacade {
	return &purchaseOrderService{
		poRepo:     poRepo,
		subOrgRepo: subOrgRepo,
		userSvc:    userSvc,
	}
}

var _ portssvc.POSvcFacade = (*purchaseOrderService)(nil)

// GetPOByID implements portssvc.POReaderSvc.
func (s *purchaseOrderService) GetPOByID(ctx context.Context, poID string) (*domain.PurchaseOrder, error) {
	return s.poRepo.FindPOByID(ctx, poID)
}

// ListPOs implements portssvc.POReaderSvc.
func (s *purchaseOrderService) ListPOs(ctx context.Context, params dto.ListPOsParams) ([]domain.PurchaseOrder, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	return s.poRepo.ListPOs(ctx, domain.POStatus(params.Status), limit, offset)
}

// CreatePO implements portssvc.POWriterSvc.
func (s *purchaseOrderService) CreatePO(ctx context.Context, req dto.CreatePORequest, creatorUserID string) (*domain.PurchaseOrder, error) {
	if req.SubOrgID != "" && len(req.Organizations) > 0 {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrAmbiguousTarget)
	}

	creator, err := s.userSvc.GetUserByID(ctx, creatorUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve creator %s: %w", creatorUserID, err)
	}

	items, err := buildLineItems(req.LineItems)
	if err != nil {
		return nil, err
	}
	total := domain.ComputeTotalAmount(items)

	now := time.Now().UTC()
	po := domain.PurchaseOrder{
		POID:                    uuid.NewString(),
		Name:                    req.Name,
		CreatorID:               creator.UserID,
		CreatorName:             creator.Name,
		Status:                  domain.PODraft,
		LineItems:               items,
		TotalAmount:             total,
		SpecialRequest:          req.SpecialRequest,
		OverBudgetJustification: req.OverBudgetJustification,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if req.SubOrgID != "" {
		subOrg, err := s.subOrgRepo.FindSubOrgByID(ctx, req.SubOrgID)
		if err != nil {
			return nil, err
		}
		po.SubOrgID = subOrg.SubOrgID
		po.SubOrgName = subOrg.Name
	}
	if len(req.Organizations) > 0 {
		orgs, err := s.buildPOOrganizations(ctx, req.Organizations, total, false)
		if err != nil {
			return nil, err
		}
		po.Organizations = orgs
	}

	if err := s.poRepo.SavePO(ctx, po); err != nil {
		return nil, fmt.Errorf("failed to save purchase order: %w", err)
	}
	return &po, nil
}

// UpdatePO implements portssvc.POWriterSvc.
func (s *purchaseOrderService) UpdatePO(ctx context.Context, poID string, req dto.UpdatePORequest, requestingUserID string) (*domain.PurchaseOrder, error) {
	po, err := s.poRepo.FindPOByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if err := s.requireCreatorOrAdmin(ctx, po, requestingUserID); err != nil {
		return nil, err
	}
	if !po.Status.IsEditable() {
		return nil, fmt.Errorf("%w: %w (status %s)", apperrors.ErrValidation, ErrPONotEditable, po.Status)
	}

	if req.Name != nil {
		po.Name = *req.Name
	}
	if req.SpecialRequest != nil {
		po.SpecialRequest = *req.SpecialRequest
	}
	if req.OverBudgetJustification != nil {
		po.OverBudgetJustification = *req.OverBudgetJustification
	}

	if req.LineItems != nil {
		items, err := buildLineItems(*req.LineItems)
		if err != nil {
			return nil, err
		}
		po.LineItems = items
		po.TotalAmount = domain.ComputeTotalAmount(items)
	}

	switch {
	case req.Organizations != nil:
		if req.SubOrgID != nil && *req.SubOrgID != "" {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrAmbiguousTarget)
		}
		orgs, err := s.buildPOOrganizations(ctx, *req.Organizations, po.TotalAmount, false)
		if err != nil {
			return nil, err
		}
		po.Organizations = orgs
		if len(orgs) > 0 {
			po.SubOrgID = ""
			po.SubOrgName = ""
		}
	case req.SubOrgID != nil:
		if *req.SubOrgID == "" {
			po.SubOrgID = ""
			po.SubOrgName = ""
			break
		}
		if len(po.Organizations) > 0 {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrAmbiguousTarget)
		}
		subOrg, err := s.subOrgRepo.FindSubOrgByID(ctx, *req.SubOrgID)
		if err != nil {
			return nil, err
		}
		po.SubOrgID = subOrg.SubOrgID
		po.SubOrgName = subOrg.Name
	case req.LineItems != nil && len(po.Organizations) > 0:
		// The total moved under an existing split. Revalidate and rescale
		// the stored percentages against the new total.
		if err := allocation.ValidateSet(poOrgEntries(po.Organizations), po.TotalAmount, false); err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
		}
		for i := range po.Organizations {
			po.Organizations[i].Percentage = allocation.Percentage(po.Organizations[i].AllocatedAmount, po.TotalAmount)
		}
	}

	po.LastUpdatedAt = time.Now().UTC()
	po.LastUpdatedBy = requestingUserID
	if err := s.poRepo.UpdatePO(ctx, *po); err != nil {
		return nil, fmt.Errorf("failed to update purchase order %s: %w", poID, err)
	}
	return po, nil
}

// DeletePO implements portssvc.POWriterSvc.
func (s *purchaseOrderService) DeletePO(ctx context.Context, poID string, requestingUserID string) error {
	po, err := s.poRepo.FindPOByID(ctx, poID)
	if err != nil {
		return err
	}
	if err := s.requireCreatorOrAdmin(ctx, po, requestingUserID); err != nil {
		return err
	}
	if err := s.poRepo.DeletePO(ctx, poID); err != nil {
		return fmt.Errorf("failed to delete purchase order %s: %w", poID, err)
	}
	return nil
}

// SubmitPO implements portssvc.POTransitionSvc.
func (s *purchaseOrderService) SubmitPO(ctx context.Context, poID string, requestingUserID string) (*domain.PurchaseOrder, error) {
	po, err := s.poRepo.FindPOByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if err := s.requireCreatorOrAdmin(ctx, po, requestingUserID); err != nil {
		return nil, err
	}
	if !po.Status.CanTransitionTo(domain.POPendingApproval) {
		return nil, transitionError(po.Status, domain.POPendingApproval)
	}

	// Reviewers see a snapshot; a split that does not cover the total is
	// not reviewable.
	if len(po.Organizations) > 0 {
		if err := allocation.ValidateSet(poOrgEntries(po.Organizations), po.TotalAmount, true); err != nil {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
		}
	}
	domain.SortLineItemsForReview(po.LineItems)

	po.Status = domain.POPendingApproval
	return s.persistTransition(ctx, po, requestingUserID)
}

// ApprovePO implements portssvc.POTransitionSvc.
func (s *purchaseOrderService) ApprovePO(ctx context.Context, poID string, requestingUserID string) (*domain.PurchaseOrder, error) {
	return s.adminTransition(ctx, poID, domain.POApproved, requestingUserID, nil)
}

// DeclinePO implements portssvc.POTransitionSvc.
func (s *purchaseOrderService) DeclinePO(ctx context.Context, poID string, req dto.DeclinePORequest, requestingUserID string) (*domain.PurchaseOrder, error) {
	return s.adminTransition(ctx, poID, domain.PODeclined, requestingUserID, func(po *domain.PurchaseOrder) {
		po.AdminComments = req.AdminComments
	})
}

// ResubmitPO implements portssvc.POTransitionSvc.
func (s *purchaseOrderService) ResubmitPO(ctx context.Context, poID string, requestingUserID string) (*domain.PurchaseOrder, error) {
	po, err := s.poRepo.FindPOByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if err := s.requireCreatorOrAdmin(ctx, po, requestingUserID); err != nil {
		return nil, err
	}
	if !po.Status.CanTransitionTo(domain.PODraft) {
		return nil, transitionError(po.Status, domain.PODraft)
	}

	po.Status = domain.PODraft
	po.AdminComments = ""
	return s.persistTransition(ctx, po, requestingUserID)
}

// MarkPOPurchasing implements portssvc.POTransitionSvc.
func (s *purchaseOrderService) MarkPOPurchasing(ctx context.Context, poID string, requestingUserID string) (*domain.PurchaseOrder, error) {
	return s.adminTransition(ctx, poID, domain.POPendingPurchase, requestingUserID, nil)
}

// MarkPOPurchased implements portssvc.POTransitionSvc.
func (s *purchaseOrderService) MarkPOPurchased(ctx context.Context, poID string, requestingUserID string) (*domain.PurchaseOrder, error) {
	return s.adminTransition(ctx, poID, domain.POPurchased, requestingUserID, nil)
}

// adminTransition performs an ADMIN-gated status transition, applying mutate
// (if any) before persisting.
func (s *purchaseOrderService) adminTransition(ctx context.Context, poID string, next domain.POStatus, requestingUserID string, mutate func(*domain.PurchaseOrder)) (*domain.PurchaseOrder, error) {
	if err := requireAdmin(ctx, s.userSvc, requestingUserID); err != nil {
		return nil, err
	}
	po, err := s.poRepo.FindPOByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if !po.Status.CanTransitionTo(next) {
		return nil, transitionError(po.Status, next)
	}

	po.Status = next
	if mutate != nil {
		mutate(po)
	}
	return s.persistTransition(ctx, po, requestingUserID)
}

func (s *purchaseOrderService) persistTransition(ctx context.Context, po *domain.PurchaseOrder, requestingUserID string) (*domain.PurchaseOrder, error) {
	po.LastUpdatedAt = time.Now().UTC()
	po.LastUpdatedBy = requestingUserID
	if err := s.poRepo.UpdatePO(ctx, *po); err != nil {
		return nil, fmt.Errorf("failed to persist transition on purchase order %s: %w", po.POID, err)
	}
	return po, nil
}

// requireCreatorOrAdmin permits the purchase order's creator or any admin.
func (s *purchaseOrderService) requireCreatorOrAdmin(ctx context.Context, po *domain.PurchaseOrder, requestingUserID string) error {
	if po.CreatorID == requestingUserID {
		return nil
	}
	return requireAdmin(ctx, s.userSvc, requestingUserID)
}

// buildPOOrganizations validates and denormalizes an organization split
// against the purchase order total.
func (s *purchaseOrderService) buildPOOrganizations(ctx context.Context, inputs []dto.POOrganizationInput, total decimal.Decimal, requireFull bool) ([]domain.POOrganization, error) {
	entries := make([]allocation.Entry, len(inputs))
	for i, in := range inputs {
		entries[i] = allocation.Entry{TargetID: in.SubOrgID, Amount: in.AllocatedAmount}
	}
	if err := allocation.ValidateSet(entries, total, requireFull); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	ids := make([]string, len(inputs))
	for i, in := range inputs {
		ids[i] = in.SubOrgID
	}
	subOrgs, err := s.subOrgRepo.FindSubOrgsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sub-organizations: %w", err)
	}

	orgs := make([]domain.POOrganization, len(inputs))
	for i, in := range inputs {
		subOrg, ok := subOrgs[in.SubOrgID]
		if !ok {
			return nil, fmt.Errorf("%w: sub-organization %s", apperrors.ErrNotFound, in.SubOrgID)
		}
		orgs[i] = domain.POOrganization{
			OrgAllocID:      uuid.NewString(),
			SubOrgID:        subOrg.SubOrgID,
			SubOrgName:      subOrg.Name,
			AllocatedAmount: in.AllocatedAmount,
			Percentage:      allocation.Percentage(in.AllocatedAmount, total),
		}
	}
	return orgs, nil
}

// buildLineItems computes each row's total from quantity and unit price.
func buildLineItems(inputs []dto.LineItemInput) ([]domain.LineItem, error) {
	items := make([]domain.LineItem, len(inputs))
	for i, in := range inputs {
		if !in.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: %w (item %q)", apperrors.ErrValidation, ErrQuantityNotPositive, in.ItemName)
		}
		items[i] = domain.LineItem{
			Vendor:     in.Vendor,
			ItemName:   in.ItemName,
			SKU:        in.SKU,
			Quantity:   in.Quantity,
			UnitPrice:  in.UnitPrice,
			TotalPrice: in.Quantity.Mul(in.UnitPrice),
			Link:       in.Link,
			Notes:      in.Notes,
		}
	}
	return items, nil
}

func poOrgEntries(orgs []domain.POOrganization) []allocation.Entry {
	entries := make([]allocation.Entry, len(orgs))
	for i, org := range orgs {
		entries[i] = allocation.Entry{TargetID: org.SubOrgID, Amount: org.AllocatedAmount}
	}
	return entries
}

func transitionError(from, to domain.POStatus) error {
	return fmt.Errorf("%w: %w (%s -> %s)", apperrors.ErrValidation, ErrInvalidTransition, from, to)
}
