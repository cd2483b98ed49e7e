package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/orgbooks/po_budget_app/internal/apperrors"
	"github.com/orgbooks/po_budget_app/internal/core/domain"
	portssvc "github.com/orgbooks/po_budget_app/internal/core/ports/services"
	"github.com/orgbooks/po_budget_app/internal/core/services"
	"github.com/orgbooks/po_budget_app/internal/dto"
	"github.com/orgbooks/po_budget_app/internal/utils/allocation"
)

type PurchaseOrderServiceTestSuite struct {
	suite.Suite
	mockPORepo     *MockPurchaseOrderRepository
	mockSubOrgRepo *MockSubOrgRepository
	mockUserSvc    *MockUserReaderSvc
	service        portssvc.POSvcFacade
}

func (suite *PurchaseOrderServiceTestSuite) SetupTest() {
	suite.mockPORepo = new(MockPurchaseOrderRepository)
	suite.mockSubOrgRepo = new(MockSubOrgRepository)
	suite.mockUserSvc = new(MockUserReaderSvc)
	suite.service = services.NewPurchaseOrderService(suite.mockPORepo, suite.mockSubOrgRepo, suite.mockUserSvc)
}

func (suite *PurchaseOrderServiceTestSuite) expectUser(userID string, role domain.UserRole) {
	suite.mockUserSvc.On("GetUserByID", mock.Anything, userID).
		Return(&domain.User{UserID: userID, Name: "Jordan Lee", Role: role}, nil)
}

func (suite *PurchaseOrderServiceTestSuite) TestCreatePO_ComputesLineTotals() {
	ctx := context.Background()
	suite.expectUser("user-1", domain.RoleMember)
	suite.mockPORepo.On("SavePO", ctx, mock.AnythingOfType("domain.PurchaseOrder")).Return(nil).Once()

	req := dto.CreatePORequest{
		Name: "Drivetrain restock",
		LineItems: []dto.LineItemInput{
			{Vendor: "McMaster", ItemName: "Bolts", Quantity: dec("4"), UnitPrice: dec("2.50")},
			{Vendor: "AndyMark", ItemName: "Gearbox", Quantity: dec("2"), UnitPrice: dec("120")},
		},
	}

	po, err := suite.service.CreatePO(ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(po)
	suite.NotEmpty(po.POID)
	suite.Equal(domain.PODraft, po.Status)
	suite.Equal("Jordan Lee", po.CreatorName)
	suite.True(po.LineItems[0].TotalPrice.Equal(dec("10")))
	suite.True(po.LineItems[1].TotalPrice.Equal(dec("240")))
	suite.True(po.TotalAmount.Equal(dec("250")))
}

func (suite *PurchaseOrderServiceTestSuite) TestCreatePO_PartialOrgSplitAllowedInDraft() {
	ctx := context.Background()
	suite.expectUser("user-1", domain.RoleMember)
	suite.mockSubOrgRepo.On("FindSubOrgsByIDs", ctx, []string{"org-a"}).Return(map[string]domain.SubOrganization{
		"org-a": {SubOrgID: "org-a", Name: "Electrical"},
	}, nil).Once()
	suite.mockPORepo.On("SavePO", ctx, mock.AnythingOfType("domain.PurchaseOrder")).Return(nil).Once()

	req := dto.CreatePORequest{
		Name: "Sensors",
		LineItems: []dto.LineItemInput{
			{Vendor: "Digikey", ItemName: "Encoders", Quantity: dec("1"), UnitPrice: dec("500")},
		},
		Organizations: []dto.POOrganizationInput{
			{SubOrgID: "org-a", AllocatedAmount: dec("200")},
		},
	}

	po, err := suite.service.CreatePO(ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.Require().Len(po.Organizations, 1)
	suite.Equal("Electrical", po.Organizations[0].SubOrgName)
	suite.True(po.Organizations[0].Percentage.Equal(dec("40")))
}

func (suite *PurchaseOrderServiceTestSuite) TestCreatePO_RejectsScalarPlusSplit() {
	ctx := context.Background()

	req := dto.CreatePORequest{
		Name:          "Ambiguous",
		SubOrgID:      "org-a",
		Organizations: []dto.POOrganizationInput{{SubOrgID: "org-b", AllocatedAmount: dec("10")}},
		LineItems: []dto.LineItemInput{
			{Vendor: "V", ItemName: "I", Quantity: dec("1"), UnitPrice: dec("10")},
		},
	}

	_, err := suite.service.CreatePO(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAmbiguousTarget)
	suite.mockPORepo.AssertNotCalled(suite.T(), "SavePO", mock.Anything, mock.Anything)
}

func (suite *PurchaseOrderServiceTestSuite) TestCreatePO_RejectsZeroQuantity() {
	ctx := context.Background()
	suite.expectUser("user-1", domain.RoleMember)

	req := dto.CreatePORequest{
		Name: "Bad row",
		LineItems: []dto.LineItemInput{
			{Vendor: "V", ItemName: "I", Quantity: dec("0"), UnitPrice: dec("10")},
		},
	}

	_, err := suite.service.CreatePO(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrQuantityNotPositive)
}

func (suite *PurchaseOrderServiceTestSuite) TestSubmitPO_SortsLineItemsAndTransitions() {
	ctx := context.Background()
	po := &domain.PurchaseOrder{
		POID:      "po-1",
		CreatorID: "user-1",
		Status:    domain.PODraft,
		LineItems: []domain.LineItem{
			{Vendor: "McMaster", ItemName: "Bolts", TotalPrice: dec("200")},
			{Vendor: "andymark", ItemName: "Gearbox", TotalPrice: dec("300")},
		},
		TotalAmount: dec("500"),
		Organizations: []domain.POOrganization{
			{SubOrgID: "org-a", AllocatedAmount: dec("200")},
			{SubOrgID: "org-b", AllocatedAmount: dec("300")},
		},
	}

	suite.mockPORepo.On("FindPOByID", ctx, "po-1").Return(po, nil).Once()
	suite.mockPORepo.On("UpdatePO", ctx, mock.MatchedBy(func(p domain.PurchaseOrder) bool {
		return p.Status == domain.POPendingApproval
	})).Return(nil).Once()

	updated, err := suite.service.SubmitPO(ctx, "po-1", "user-1")

	suite.Require().NoError(err)
	suite.Equal(domain.POPendingApproval, updated.Status)
	// Vendor sort is case-insensitive: andymark before McMaster.
	suite.Equal("Gearbox", updated.LineItems[0].ItemName)
	suite.Equal("Bolts", updated.LineItems[1].ItemName)
}

func (suite *PurchaseOrderServiceTestSuite) TestSubmitPO_RejectsPartialOrgSplit() {
	ctx := context.Background()
	po := &domain.PurchaseOrder{
		POID:        "po-1",
		CreatorID:   "user-1",
		Status:      domain.PODraft,
		TotalAmount: dec("500"),
		Organizations: []domain.POOrganization{
			{SubOrgID: "org-a", AllocatedAmount: dec("200")},
		},
	}
	suite.mockPORepo.On("FindPOByID", ctx, "po-1").Return(po, nil).Once()

	_, err := suite.service.SubmitPO(ctx, "po-1", "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, allocation.ErrUnbalanced)
	suite.mockPORepo.AssertNotCalled(suite.T(), "UpdatePO", mock.Anything, mock.Anything)
}

func (suite *PurchaseOrderServiceTestSuite) TestApprovePO_AdminOnly() {
	ctx := context.Background()
	suite.expectUser("member-1", domain.RoleMember)

	_, err := suite.service.ApprovePO(ctx, "po-1", "member-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockPORepo.AssertNotCalled(suite.T(), "FindPOByID", mock.Anything, mock.Anything)
}

func (suite *PurchaseOrderServiceTestSuite) TestApprovePO_AdminSucceeds() {
	ctx := context.Background()
	suite.expectUser("admin-1", domain.RoleAdmin)
	po := &domain.PurchaseOrder{POID: "po-1", CreatorID: "user-1", Status: domain.POPendingApproval}

	suite.mockPORepo.On("FindPOByID", ctx, "po-1").Return(po, nil).Once()
	suite.mockPORepo.On("UpdatePO", ctx, mock.MatchedBy(func(p domain.PurchaseOrder) bool {
		return p.Status == domain.POApproved
	})).Return(nil).Once()

	updated, err := suite.service.ApprovePO(ctx, "po-1", "admin-1")

	suite.Require().NoError(err)
	suite.Equal(domain.POApproved, updated.Status)
}

func (suite *PurchaseOrderServiceTestSuite) TestDeclineThenResubmit() {
	ctx := context.Background()
	suite.expectUser("admin-1", domain.RoleAdmin)
	po := &domain.PurchaseOrder{POID: "po-1", CreatorID: "user-1", Status: domain.POPendingApproval}

	suite.mockPORepo.On("FindPOByID", ctx, "po-1").Return(po, nil).Once()
	suite.mockPORepo.On("UpdatePO", ctx, mock.MatchedBy(func(p domain.PurchaseOrder) bool {
		return p.Status == domain.PODeclined && p.AdminComments == "Wrong vendor"
	})).Return(nil).Once()

	declined, err := suite.service.DeclinePO(ctx, "po-1", dto.DeclinePORequest{AdminComments: "Wrong vendor"}, "admin-1")
	suite.Require().NoError(err)
	suite.Equal("Wrong vendor", declined.AdminComments)

	suite.mockPORepo.On("FindPOByID", ctx, "po-1").Return(declined, nil).Once()
	suite.mockPORepo.On("UpdatePO", ctx, mock.MatchedBy(func(p domain.PurchaseOrder) bool {
		return p.Status == domain.PODraft && p.AdminComments == ""
	})).Return(nil).Once()

	resubmitted, err := suite.service.ResubmitPO(ctx, "po-1", "user-1")
	suite.Require().NoError(err)
	suite.Equal(domain.PODraft, resubmitted.Status)
	suite.Empty(resubmitted.AdminComments)
}

func (suite *PurchaseOrderServiceTestSuite) TestMarkPurchased_TerminalState() {
	ctx := context.Background()
	suite.expectUser("admin-1", domain.RoleAdmin)
	po := &domain.PurchaseOrder{POID: "po-1", CreatorID: "user-1", Status: domain.POPurchased}
	suite.mockPORepo.On("FindPOByID", ctx, "po-1").Return(po, nil).Once()

	_, err := suite.service.MarkPOPurchasing(ctx, "po-1", "admin-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrInvalidTransition)
	suite.mockPORepo.AssertNotCalled(suite.T(), "UpdatePO", mock.Anything, mock.Anything)
}

func (suite *PurchaseOrderServiceTestSuite) TestUpdatePO_NotEditableAfterSubmission() {
	ctx := context.Background()
	po := &domain.PurchaseOrder{POID: "po-1", CreatorID: "user-1", Status: domain.POPendingApproval}
	suite.mockPORepo.On("FindPOByID", ctx, "po-1").Return(po, nil).Once()

	name := "Renamed"
	_, err := suite.service.UpdatePO(ctx, "po-1", dto.UpdatePORequest{Name: &name}, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrPONotEditable)
}

func (suite *PurchaseOrderServiceTestSuite) TestUpdatePO_StrangerForbidden() {
	ctx := context.Background()
	suite.expectUser("stranger", domain.RoleMember)
	po := &domain.PurchaseOrder{POID: "po-1", CreatorID: "user-1", Status: domain.PODraft}
	suite.mockPORepo.On("FindPOByID", ctx, "po-1").Return(po, nil).Once()

	name := "Renamed"
	_, err := suite.service.UpdatePO(ctx, "po-1", dto.UpdatePORequest{Name: &name}, "stranger")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *PurchaseOrderServiceTestSuite) TestUpdatePO_LineItemChangeRescalesSplit() {
	ctx := context.Background()
	po := &domain.PurchaseOrder{
		POID:        "po-1",
		CreatorID:   "user-1",
		Status:      domain.PODraft,
		TotalAmount: dec("100"),
		Organizations: []domain.POOrganization{
			{SubOrgID: "org-a", AllocatedAmount: dec("50"), Percentage: dec("50")},
		},
	}
	suite.mockPORepo.On("FindPOByID", ctx, "po-1").Return(po, nil).Once()
	suite.mockPORepo.On("UpdatePO", ctx, mock.AnythingOfType("domain.PurchaseOrder")).Return(nil).Once()

	items := []dto.LineItemInput{
		{Vendor: "V", ItemName: "I", Quantity: dec("1"), UnitPrice: dec("200")},
	}
	updated, err := suite.service.UpdatePO(ctx, "po-1", dto.UpdatePORequest{LineItems: &items}, "user-1")

	suite.Require().NoError(err)
	suite.True(updated.TotalAmount.Equal(dec("200")))
	suite.True(updated.Organizations[0].Percentage.Equal(dec("25")))
}

func (suite *PurchaseOrderServiceTestSuite) TestDeletePO_CreatorAllowed() {
	ctx := context.Background()
	po := &domain.PurchaseOrder{POID: "po-1", CreatorID: "user-1", Status: domain.PODraft}

	suite.mockPORepo.On("FindPOByID", ctx, "po-1").Return(po, nil).Once()
	suite.mockPORepo.On("DeletePO", ctx, "po-1").Return(nil).Once()

	err := suite.service.DeletePO(ctx, "po-1", "user-1")

	suite.Require().NoError(err)
	suite.mockPORepo.AssertExpectations(suite.T())
}

func TestPurchaseOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PurchaseOrderServiceTestSuite))
}
