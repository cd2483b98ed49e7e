package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/orgbooks/po_budget_app/internal/apperrors"
	"github.com/orgbooks/po_budget_app/internal/core/domain"
	portssvc "github.com/orgbooks/po_budget_app/internal/core/ports/services"
	"github.com/orgbooks/po_budget_app/internal/core/services"
	"github.com/orgbooks/po_budget_app/internal/dto"
	"github.com/orgbooks/po_budget_app/internal/utils/allocation"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	mockTxnRepo    *MockTransactionRepository
	mockSubOrgRepo *MockSubOrgRepository
	mockReconciler *MockReconciler
	service        portssvc.TransactionSvcFacade
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockSubOrgRepo = new(MockSubOrgRepository)
	suite.mockReconciler = new(MockReconciler)
	suite.service = services.NewTransactionService(suite.mockTxnRepo, suite.mockSubOrgRepo, suite.mockReconciler)
}

func (suite *TransactionServiceTestSuite) subOrgCatalog() map[string]domain.SubOrganization {
	return map[string]domain.SubOrganization{
		"org-a": {SubOrgID: "org-a", Name: "Electrical"},
		"org-b": {SubOrgID: "org-b", Name: "Mechanical"},
		"org-c": {SubOrgID: "org-c", Name: "Software"},
	}
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_WithSplit() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		PostDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Description: "Hardware order",
		DebitAmount: dec("300"),
		Allocations: []dto.AllocationInput{
			{SubOrgID: "org-a", Amount: dec("150")},
			{SubOrgID: "org-b", Amount: dec("90")},
			{SubOrgID: "org-c", Amount: dec("60")},
		},
	}

	suite.mockSubOrgRepo.On("FindSubOrgsByIDs", ctx, []string{"org-a", "org-b", "org-c"}).Return(suite.subOrgCatalog(), nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return len(txn.Allocations) == 3 && txn.Status == domain.TransactionAllocated
	})).Return(nil).Once()
	suite.mockReconciler.On("Reconcile", ctx).Return(nil).Once()

	txn, err := suite.service.CreateTransaction(ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.NotEmpty(txn.TransactionID)
	suite.Equal(domain.TransactionAllocated, txn.Status)
	suite.Equal("Electrical", txn.Allocations[0].SubOrgName)
	suite.True(txn.Allocations[0].Percentage.Equal(dec("50")))
	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockReconciler.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_PartialSplitStaysPending() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		PostDate:    time.Now().UTC(),
		Description: "Partially attributed",
		DebitAmount: dec("100"),
		Allocations: []dto.AllocationInput{{SubOrgID: "org-a", Amount: dec("40")}},
	}

	suite.mockSubOrgRepo.On("FindSubOrgsByIDs", ctx, []string{"org-a"}).Return(suite.subOrgCatalog(), nil).Once()
	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()
	suite.mockReconciler.On("Reconcile", ctx).Return(nil).Once()

	txn, err := suite.service.CreateTransaction(ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.Equal(domain.TransactionPending, txn.Status)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_RejectsNonPositiveDebit() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{PostDate: time.Now(), Description: "x", DebitAmount: dec("0")}

	_, err := suite.service.CreateTransaction(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrDebitNotPositive)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_RejectsScalarPlusSplit() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		PostDate:    time.Now(),
		Description: "x",
		DebitAmount: dec("100"),
		SubOrgID:    "org-a",
		Allocations: []dto.AllocationInput{{SubOrgID: "org-b", Amount: dec("100")}},
	}

	_, err := suite.service.CreateTransaction(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrAmbiguousTarget)
}

func (suite *TransactionServiceTestSuite) TestCreateTransaction_ReconcileFailureReturnsCommittedResult() {
	ctx := context.Background()
	req := dto.CreateTransactionRequest{
		PostDate:    time.Now().UTC(),
		Description: "Committed despite recompute failure",
		DebitAmount: dec("25"),
	}

	suite.mockTxnRepo.On("SaveTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(nil).Once()
	suite.mockReconciler.On("Reconcile", ctx).Return(apperrors.ErrReconciliation).Once()

	txn, err := suite.service.CreateTransaction(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrReconciliation)
	suite.Require().NotNil(txn)
	suite.NotEmpty(txn.TransactionID)
}

func (suite *TransactionServiceTestSuite) TestReplaceAllocations_EqualSplit() {
	ctx := context.Background()
	existing := &domain.Transaction{
		TransactionID: "t1",
		DebitAmount:   dec("100"),
		SubOrgID:      "org-a",
		SubOrgName:    "Electrical",
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, "t1").Return(existing, nil).Once()
	suite.mockSubOrgRepo.On("FindSubOrgsByIDs", ctx, []string{"org-a", "org-b", "org-c"}).Return(suite.subOrgCatalog(), nil).Once()
	suite.mockTxnRepo.On("UpdateTransaction", ctx, "t1", mock.MatchedBy(func(u domain.TransactionUpdate) bool {
		return u.Allocations != nil && len(*u.Allocations) == 3 && u.ClearLegacySubOrg
	}), "user-1").Return(nil).Once()
	suite.mockReconciler.On("Reconcile", ctx).Return(nil).Once()

	req := dto.ReplaceAllocationsRequest{SplitEquallyAmong: []string{"org-a", "org-b", "org-c"}}
	txn, err := suite.service.ReplaceAllocations(ctx, "t1", req, "user-1")

	suite.Require().NoError(err)
	suite.Require().Len(txn.Allocations, 3)
	// Raw thirds of 100; the residual drift sits inside the epsilon.
	suite.True(txn.Allocations[0].Amount.Equal(txn.Allocations[1].Amount))
	suite.True(txn.AllocatedTotal().Sub(dec("100")).Abs().LessThanOrEqual(allocation.AmountEpsilon))
	suite.Equal(domain.TransactionAllocated, txn.Status)
	suite.Empty(txn.SubOrgID)
}

func (suite *TransactionServiceTestSuite) TestReplaceAllocations_EqualSplitNonCentDivisor() {
	ctx := context.Background()
	existing := &domain.Transaction{TransactionID: "t1", DebitAmount: dec("1.00")}
	catalog := map[string]domain.SubOrganization{
		"org-a": {SubOrgID: "org-a", Name: "Operations"},
		"org-b": {SubOrgID: "org-b", Name: "Outreach"},
		"org-c": {SubOrgID: "org-c", Name: "Electrical"},
		"org-d": {SubOrgID: "org-d", Name: "Mechanical"},
		"org-e": {SubOrgID: "org-e", Name: "Software"},
		"org-f": {SubOrgID: "org-f", Name: "Marketing"},
	}
	targets := []string{"org-a", "org-b", "org-c", "org-d", "org-e", "org-f"}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, "t1").Return(existing, nil).Once()
	suite.mockSubOrgRepo.On("FindSubOrgsByIDs", ctx, targets).Return(catalog, nil).Once()
	suite.mockTxnRepo.On("UpdateTransaction", ctx, "t1", mock.AnythingOfType("domain.TransactionUpdate"), "user-1").Return(nil).Once()
	suite.mockReconciler.On("Reconcile", ctx).Return(nil).Once()

	// A dollar across six targets does not divide into whole cents; the
	// split must still pass its own validation.
	req := dto.ReplaceAllocationsRequest{SplitEquallyAmong: targets}
	txn, err := suite.service.ReplaceAllocations(ctx, "t1", req, "user-1")

	suite.Require().NoError(err)
	suite.Require().Len(txn.Allocations, 6)
	suite.True(txn.AllocatedTotal().Sub(dec("1.00")).Abs().LessThanOrEqual(allocation.AmountEpsilon))
	suite.Equal(domain.TransactionAllocated, txn.Status)
}

func (suite *TransactionServiceTestSuite) TestReplaceAllocations_RejectsBothModes() {
	ctx := context.Background()
	existing := &domain.Transaction{TransactionID: "t1", DebitAmount: dec("100")}
	suite.mockTxnRepo.On("FindTransactionByID", ctx, "t1").Return(existing, nil).Once()

	req := dto.ReplaceAllocationsRequest{
		Allocations:       []dto.AllocationInput{{SubOrgID: "org-a", Amount: dec("50")}},
		SplitEquallyAmong: []string{"org-a", "org-b"},
	}
	_, err := suite.service.ReplaceAllocations(ctx, "t1", req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TransactionServiceTestSuite) TestReplaceAllocations_EmptySetMarksUnallocated() {
	ctx := context.Background()
	existing := &domain.Transaction{
		TransactionID: "t1",
		DebitAmount:   dec("100"),
		Allocations: []domain.TransactionAllocation{
			{AllocationID: "a1", SubOrgID: "org-a", Amount: dec("100")},
		},
	}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, "t1").Return(existing, nil).Once()
	suite.mockTxnRepo.On("UpdateTransaction", ctx, "t1", mock.MatchedBy(func(u domain.TransactionUpdate) bool {
		return u.Allocations != nil && len(*u.Allocations) == 0 && !u.ClearLegacySubOrg &&
			u.Status != nil && *u.Status == domain.TransactionPending
	}), "user-1").Return(nil).Once()
	suite.mockReconciler.On("Reconcile", ctx).Return(nil).Once()

	txn, err := suite.service.ReplaceAllocations(ctx, "t1", dto.ReplaceAllocationsRequest{}, "user-1")

	suite.Require().NoError(err)
	suite.Empty(txn.Allocations)
	suite.Equal(domain.TransactionPending, txn.Status)
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_DebitShrinkBelowSplitFails() {
	ctx := context.Background()
	existing := &domain.Transaction{
		TransactionID: "t1",
		DebitAmount:   dec("500"),
		Allocations: []domain.TransactionAllocation{
			{AllocationID: "a1", SubOrgID: "org-a", Amount: dec("200"), Percentage: dec("40")},
			{AllocationID: "a2", SubOrgID: "org-b", Amount: dec("300"), Percentage: dec("60")},
		},
	}
	suite.mockTxnRepo.On("FindTransactionByID", ctx, "t1").Return(existing, nil).Once()

	newDebit := dec("400")
	req := dto.UpdateTransactionRequest{DebitAmount: &newDebit}
	_, err := suite.service.UpdateTransaction(ctx, "t1", req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, allocation.ErrOverAllocated)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "UpdateTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TransactionServiceTestSuite) TestUpdateTransaction_DebitGrowthRecomputesPercentages() {
	ctx := context.Background()
	existing := &domain.Transaction{
		TransactionID: "t1",
		DebitAmount:   dec("100"),
		Allocations: []domain.TransactionAllocation{
			{AllocationID: "a1", SubOrgID: "org-a", Amount: dec("50"), Percentage: dec("50")},
		},
	}
	suite.mockTxnRepo.On("FindTransactionByID", ctx, "t1").Return(existing, nil).Once()
	suite.mockTxnRepo.On("UpdateTransaction", ctx, "t1", mock.AnythingOfType("domain.TransactionUpdate"), "user-1").Return(nil).Once()
	suite.mockReconciler.On("Reconcile", ctx).Return(nil).Once()

	newDebit := dec("200")
	req := dto.UpdateTransactionRequest{DebitAmount: &newDebit}
	txn, err := suite.service.UpdateTransaction(ctx, "t1", req, "user-1")

	suite.Require().NoError(err)
	suite.True(txn.Allocations[0].Percentage.Equal(dec("25")))
	suite.Equal(domain.TransactionPending, txn.Status)
}

func (suite *TransactionServiceTestSuite) TestDeleteTransaction_TriggersReconcile() {
	ctx := context.Background()
	existing := &domain.Transaction{TransactionID: "t1", DebitAmount: dec("10")}

	suite.mockTxnRepo.On("FindTransactionByID", ctx, "t1").Return(existing, nil).Once()
	suite.mockTxnRepo.On("DeleteTransaction", ctx, "t1").Return(nil).Once()
	suite.mockReconciler.On("Reconcile", ctx).Return(nil).Once()

	err := suite.service.DeleteTransaction(ctx, "t1", "user-1")

	suite.Require().NoError(err)
	suite.mockReconciler.AssertExpectations(suite.T())
}

func (suite *TransactionServiceTestSuite) TestDeleteTransaction_NotFound() {
	ctx := context.Background()
	suite.mockTxnRepo.On("FindTransactionByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	err := suite.service.DeleteTransaction(ctx, "missing", "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "DeleteTransaction", mock.Anything, mock.Anything)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
