package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/orgbooks/po_budget_app/internal/core/domain"
	"github.com/orgbooks/po_budget_app/internal/dto"
)

// --- Mock TransactionRepository ---

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	args := m.Called(ctx, transactionID)
	var txn *domain.Transaction
	if args.Get(0) != nil {
		txn = args.Get(0).(*domain.Transaction)
	}
	return txn, args.Error(1)
}

func (m *MockTransactionRepository) ListTransactions(ctx context.Context, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	args := m.Called(ctx, limit, nextToken)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	var token *string
	if args.Get(1) != nil {
		token = args.Get(1).(*string)
	}
	return txns, token, args.Error(2)
}

func (m *MockTransactionRepository) ListAllTransactions(ctx context.Context) ([]domain.Transaction, error) {
	args := m.Called(ctx)
	var txns []domain.Transaction
	if args.Get(0) != nil {
		txns = args.Get(0).([]domain.Transaction)
	}
	return txns, args.Error(1)
}

func (m *MockTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateTransaction(ctx context.Context, transactionID string, update domain.TransactionUpdate, updatedBy string) error {
	args := m.Called(ctx, transactionID, update, updatedBy)
	return args.Error(0)
}

func (m *MockTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

// --- Mock SubOrgRepository ---

type MockSubOrgRepository struct {
	mock.Mock
}

func (m *MockSubOrgRepository) FindSubOrgByID(ctx context.Context, subOrgID string) (*domain.SubOrganization, error) {
	args := m.Called(ctx, subOrgID)
	var subOrg *domain.SubOrganization
	if args.Get(0) != nil {
		subOrg = args.Get(0).(*domain.SubOrganization)
	}
	return subOrg, args.Error(1)
}

func (m *MockSubOrgRepository) FindSubOrgsByIDs(ctx context.Context, subOrgIDs []string) (map[string]domain.SubOrganization, error) {
	args := m.Called(ctx, subOrgIDs)
	var subOrgs map[string]domain.SubOrganization
	if args.Get(0) != nil {
		subOrgs = args.Get(0).(map[string]domain.SubOrganization)
	}
	return subOrgs, args.Error(1)
}

func (m *MockSubOrgRepository) ListSubOrgs(ctx context.Context) ([]domain.SubOrganization, error) {
	args := m.Called(ctx)
	var subOrgs []domain.SubOrganization
	if args.Get(0) != nil {
		subOrgs = args.Get(0).([]domain.SubOrganization)
	}
	return subOrgs, args.Error(1)
}

func (m *MockSubOrgRepository) UpdateBudgetAllocated(ctx context.Context, subOrgID string, allocated decimal.Decimal, updatedBy string, now time.Time) error {
	args := m.Called(ctx, subOrgID, allocated, updatedBy, now)
	return args.Error(0)
}

func (m *MockSubOrgRepository) UpdateBudgetSpent(ctx context.Context, subOrgID string, spent decimal.Decimal, now time.Time) error {
	args := m.Called(ctx, subOrgID, spent, now)
	return args.Error(0)
}

// --- Mock PurchaseOrderRepository ---

type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindPOByID(ctx context.Context, poID string) (*domain.PurchaseOrder, error) {
	args := m.Called(ctx, poID)
	var po *domain.PurchaseOrder
	if args.Get(0) != nil {
		po = args.Get(0).(*domain.PurchaseOrder)
	}
	return po, args.Error(1)
}

func (m *MockPurchaseOrderRepository) ListPOs(ctx context.Context, status domain.POStatus, limit int, offset int) ([]domain.PurchaseOrder, error) {
	args := m.Called(ctx, status, limit, offset)
	var pos []domain.PurchaseOrder
	if args.Get(0) != nil {
		pos = args.Get(0).([]domain.PurchaseOrder)
	}
	return pos, args.Error(1)
}

func (m *MockPurchaseOrderRepository) SavePO(ctx context.Context, po domain.PurchaseOrder) error {
	args := m.Called(ctx, po)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) UpdatePO(ctx context.Context, po domain.PurchaseOrder) error {
	args := m.Called(ctx, po)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) DeletePO(ctx context.Context, poID string) error {
	args := m.Called(ctx, poID)
	return args.Error(0)
}

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedBy string, now time.Time) error {
	args := m.Called(ctx, userID, deletedBy, now)
	return args.Error(0)
}

// --- Mock ReconciliationSvc ---

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Reconcile(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- Mock UserReaderSvc ---

type MockUserReaderSvc struct {
	mock.Mock
}

func (m *MockUserReaderSvc) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserReaderSvc) ListUsers(ctx context.Context, params dto.ListUsersParams) ([]domain.User, error) {
	args := m.Called(ctx, params)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

// decimalEq builds a testify matcher comparing decimals by value.
func decimalEq(expected string) interface{} {
	want := decimal.RequireFromString(expected)
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(want)
	})
}
