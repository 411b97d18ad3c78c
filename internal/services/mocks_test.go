package services

import (
	"context"
	"time"

	"github.com/comanda-pos/comanda/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id, tenantID int64) (*model.Order, error) {
	args := m.Called(ctx, id, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, f model.OrderFilter) ([]*model.Order, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) ListByTableSession(ctx context.Context, sessionID int64) ([]*model.Order, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatusFrom(ctx context.Context, id, tenantID int64, from, to model.OrderStatus) (bool, error) {
	args := m.Called(ctx, id, tenantID, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) GetItem(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error) {
	args := m.Called(ctx, orderID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderItem), args.Error(1)
}

func (m *MockOrderRepository) UpdateItemStatus(ctx context.Context, orderID, itemID int64, status model.ItemStatus) error {
	args := m.Called(ctx, orderID, itemID, status)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkInventoryDeducted(ctx context.Context, id, tenantID int64) error {
	args := m.Called(ctx, id, tenantID)
	return args.Error(0)
}

func (m *MockOrderRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) ResolveItem(ctx context.Context, tenantID, menuItemID int64, modifierIDs []int64) (*model.ResolvedItem, error) {
	args := m.Called(ctx, tenantID, menuItemID, modifierIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ResolvedItem), args.Error(1)
}

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, orderID, tenantID int64) error {
	args := m.Called(ctx, orderID, tenantID)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumCompletedByOrder(ctx context.Context, orderID int64) (int64, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) ListByOrder(ctx context.Context, orderID int64) ([]*model.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, s *model.TableSession) (*model.TableSession, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TableSession), args.Error(1)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id, branchID int64) (*model.TableSession, error) {
	args := m.Called(ctx, id, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TableSession), args.Error(1)
}

func (m *MockSessionRepository) UpdateStatusFrom(ctx context.Context, id, branchID int64, from, to model.SessionStatus) (bool, error) {
	args := m.Called(ctx, id, branchID, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRepository) ListByTable(ctx context.Context, tableID int64, from, to *time.Time) ([]*model.TableSession, error) {
	args := m.Called(ctx, tableID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.TableSession), args.Error(1)
}

func (m *MockSessionRepository) GetTable(ctx context.Context, id, tenantID int64) (*model.Table, error) {
	args := m.Called(ctx, id, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Table), args.Error(1)
}

func (m *MockSessionRepository) UpdateTableStatus(ctx context.Context, id int64, status model.TableStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockSessionRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockLoyaltyRepository struct {
	mock.Mock
}

func (m *MockLoyaltyRepository) GetActiveProgram(ctx context.Context, tenantID int64) (*model.LoyaltyProgram, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoyaltyProgram), args.Error(1)
}

func (m *MockLoyaltyRepository) GetEnrollment(ctx context.Context, id, tenantID int64) (*model.CustomerLoyalty, error) {
	args := m.Called(ctx, id, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerLoyalty), args.Error(1)
}

func (m *MockLoyaltyRepository) GetEnrollmentByCustomer(ctx context.Context, customerID, programID, tenantID int64) (*model.CustomerLoyalty, error) {
	args := m.Called(ctx, customerID, programID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerLoyalty), args.Error(1)
}

func (m *MockLoyaltyRepository) CreateEnrollment(ctx context.Context, e *model.CustomerLoyalty) (*model.CustomerLoyalty, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomerLoyalty), args.Error(1)
}

func (m *MockLoyaltyRepository) AddPoints(ctx context.Context, enrollmentID, points int64) error {
	args := m.Called(ctx, enrollmentID, points)
	return args.Error(0)
}

func (m *MockLoyaltyRepository) SpendPoints(ctx context.Context, enrollmentID, points int64) error {
	args := m.Called(ctx, enrollmentID, points)
	return args.Error(0)
}

func (m *MockLoyaltyRepository) UpdateTier(ctx context.Context, enrollmentID, tierID int64) error {
	args := m.Called(ctx, enrollmentID, tierID)
	return args.Error(0)
}

func (m *MockLoyaltyRepository) ListTiers(ctx context.Context, programID int64) ([]*model.LoyaltyTier, error) {
	args := m.Called(ctx, programID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LoyaltyTier), args.Error(1)
}

func (m *MockLoyaltyRepository) CreateTransaction(ctx context.Context, txn *model.LoyaltyTransaction) (*model.LoyaltyTransaction, error) {
	args := m.Called(ctx, txn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoyaltyTransaction), args.Error(1)
}

func (m *MockLoyaltyRepository) HasEarnedForOrder(ctx context.Context, enrollmentID, orderID int64) (bool, error) {
	args := m.Called(ctx, enrollmentID, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoyaltyRepository) ListTransactions(ctx context.Context, enrollmentID int64, limit, offset int) ([]*model.LoyaltyTransaction, int64, error) {
	args := m.Called(ctx, enrollmentID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.LoyaltyTransaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockLoyaltyRepository) GetReward(ctx context.Context, id, tenantID int64) (*model.Reward, error) {
	args := m.Called(ctx, id, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reward), args.Error(1)
}

func (m *MockLoyaltyRepository) CreateRedemption(ctx context.Context, r *model.RewardRedemption) (*model.RewardRedemption, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RewardRedemption), args.Error(1)
}

func (m *MockLoyaltyRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) RecordConsumption(ctx context.Context, itemID int64, quantity float64, orderID int64) error {
	args := m.Called(ctx, itemID, quantity, orderID)
	return args.Error(0)
}

type MockRecipeBook struct {
	mock.Mock
}

func (m *MockRecipeBook) Recipe(ctx context.Context, tenantID, menuItemID int64) ([]model.RecipeLine, error) {
	args := m.Called(ctx, tenantID, menuItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RecipeLine), args.Error(1)
}

type MockCompletionPublisher struct {
	mock.Mock
}

func (m *MockCompletionPublisher) PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error) {
	args := m.Called(ctx, data, metadata)
	return args.String(0), args.Error(1)
}

type MockLoyaltyAwarder struct {
	mock.Mock
}

func (m *MockLoyaltyAwarder) Award(ctx context.Context, tenantID, customerID, orderID, orderTotal int64, orderNumber string) error {
	args := m.Called(ctx, tenantID, customerID, orderID, orderTotal, orderNumber)
	return args.Error(0)
}
