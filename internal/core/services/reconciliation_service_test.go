package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/orgbooks/po_budget_app/internal/apperrors"
	"github.com/orgbooks/po_budget_app/internal/core/domain"
	portssvc "github.com/orgbooks/po_budget_app/internal/core/ports/services"
	"github.com/orgbooks/po_budget_app/internal/core/services"
)

type ReconciliationServiceTestSuite struct {
	suite.Suite
	mockTxnRepo    *MockTransactionRepository
	mockSubOrgRepo *MockSubOrgRepository
	service        portssvc.ReconciliationSvc
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockSubOrgRepo = new(MockSubOrgRepository)
	suite.service = services.NewReconciliationService(suite.mockTxnRepo, suite.mockSubOrgRepo, suite.mockSubOrgRepo)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (suite *ReconciliationServiceTestSuite) TestReconcile_ConvergesSplitAndLegacy() {
	ctx := context.Background()

	txns := []domain.Transaction{
		{
			TransactionID: "t1",
			DebitAmount:   dec("100"),
			Allocations: []domain.TransactionAllocation{
				{SubOrgID: "org-a", Amount: dec("60")},
				{SubOrgID: "org-b", Amount: dec("40")},
			},
		},
		// Legacy scalar target attributes the full debit amount.
		{TransactionID: "t2", DebitAmount: dec("50"), SubOrgID: "org-a"},
	}
	subOrgs := []domain.SubOrganization{
		{SubOrgID: "org-a", BudgetSpent: dec("0")},
		{SubOrgID: "org-b", BudgetSpent: dec("0")},
	}

	suite.mockTxnRepo.On("ListAllTransactions", ctx).Return(txns, nil).Once()
	suite.mockSubOrgRepo.On("ListSubOrgs", ctx).Return(subOrgs, nil).Once()
	suite.mockSubOrgRepo.On("UpdateBudgetSpent", ctx, "org-a", decimalEq("110"), mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockSubOrgRepo.On("UpdateBudgetSpent", ctx, "org-b", decimalEq("40"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.Reconcile(ctx)

	suite.Require().NoError(err)
	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockSubOrgRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestReconcile_SkipsWritesWithinEpsilon() {
	ctx := context.Background()

	txns := []domain.Transaction{
		{TransactionID: "t1", DebitAmount: dec("99.995"), SubOrgID: "org-a"},
	}
	subOrgs := []domain.SubOrganization{
		{SubOrgID: "org-a", BudgetSpent: dec("100.00")},
	}

	suite.mockTxnRepo.On("ListAllTransactions", ctx).Return(txns, nil).Once()
	suite.mockSubOrgRepo.On("ListSubOrgs", ctx).Return(subOrgs, nil).Once()

	err := suite.service.Reconcile(ctx)

	suite.Require().NoError(err)
	suite.mockSubOrgRepo.AssertNotCalled(suite.T(), "UpdateBudgetSpent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestReconcile_ZeroesOrphanedSpend() {
	ctx := context.Background()

	subOrgs := []domain.SubOrganization{
		{SubOrgID: "org-a", BudgetSpent: dec("250")},
	}

	suite.mockTxnRepo.On("ListAllTransactions", ctx).Return([]domain.Transaction{}, nil).Once()
	suite.mockSubOrgRepo.On("ListSubOrgs", ctx).Return(subOrgs, nil).Once()
	suite.mockSubOrgRepo.On("UpdateBudgetSpent", ctx, "org-a", decimalEq("0"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.Reconcile(ctx)

	suite.Require().NoError(err)
	suite.mockSubOrgRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestReconcile_WriteFailureStillUpdatesOthers() {
	ctx := context.Background()

	txns := []domain.Transaction{
		{TransactionID: "t1", DebitAmount: dec("10"), SubOrgID: "org-a"},
		{TransactionID: "t2", DebitAmount: dec("20"), SubOrgID: "org-b"},
	}
	subOrgs := []domain.SubOrganization{
		{SubOrgID: "org-a", BudgetSpent: dec("0")},
		{SubOrgID: "org-b", BudgetSpent: dec("0")},
	}

	suite.mockTxnRepo.On("ListAllTransactions", ctx).Return(txns, nil).Once()
	suite.mockSubOrgRepo.On("ListSubOrgs", ctx).Return(subOrgs, nil).Once()
	suite.mockSubOrgRepo.On("UpdateBudgetSpent", ctx, "org-a", decimalEq("10"), mock.AnythingOfType("time.Time")).Return(assert.AnError).Once()
	suite.mockSubOrgRepo.On("UpdateBudgetSpent", ctx, "org-b", decimalEq("20"), mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.Reconcile(ctx)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrReconciliation)
	suite.mockSubOrgRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestReconcile_LoadFailure() {
	ctx := context.Background()

	suite.mockTxnRepo.On("ListAllTransactions", ctx).Return(nil, assert.AnError).Once()

	err := suite.service.Reconcile(ctx)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrReconciliation)
	suite.mockSubOrgRepo.AssertNotCalled(suite.T(), "UpdateBudgetSpent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
