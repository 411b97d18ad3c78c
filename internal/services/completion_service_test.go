package services

import (
	"context"
	"testing"

	"github.com/comanda-pos/comanda/internal/model"
	"github.com/comanda-pos/comanda/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func completedOrder(customerID *int64) *model.Order {
	return &model.Order{
		ID:          42,
		TenantID:    1,
		BranchID:    1,
		OrderNumber: "ORD-0042",
		Status:      model.OrderStatusCompleted,
		Total:       11800,
		CustomerID:  customerID,
		Items: []*model.OrderItem{
			{ID: 1, MenuItemID: 10, Name: "Tacos al pastor", Quantity: 2},
		},
	}
}

func TestCompletionService_Complete(t *testing.T) {
	ctx := context.Background()
	customerID := int64(10)

	t.Run("deducts stock and awards points", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		inventoryRepo := new(MockInventoryRepository)
		recipes := new(MockRecipeBook)
		loyalty := new(MockLoyaltyAwarder)
		service := NewCompletionService(orderRepo, inventoryRepo, recipes, loyalty, nil)

		orderRepo.On("GetByID", ctx, int64(42), int64(1)).
			Return(completedOrder(&customerID), nil)
		recipes.On("Recipe", ctx, int64(1), int64(10)).
			Return([]model.RecipeLine{
				{IngredientID: 100, Quantity: 0.15},
				{IngredientID: 101, Quantity: 2},
			}, nil)
		// Two tacos consume 0.3 of ingredient 100 and 4 of ingredient 101.
		inventoryRepo.On("RecordConsumption", ctx, int64(100), 0.3, int64(42)).Return(nil)
		inventoryRepo.On("RecordConsumption", ctx, int64(101), 4.0, int64(42)).Return(nil)
		orderRepo.On("MarkInventoryDeducted", ctx, int64(42), int64(1)).Return(nil)
		loyalty.On("Award", ctx, int64(1), int64(10), int64(42), int64(11800), "ORD-0042").Return(nil)

		err := service.Complete(ctx, 42, 1)
		require.NoError(t, err)

		orderRepo.AssertExpectations(t)
		inventoryRepo.AssertExpectations(t)
		loyalty.AssertExpectations(t)
	})

	t.Run("replay skips inventory", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		inventoryRepo := new(MockInventoryRepository)
		recipes := new(MockRecipeBook)
		loyalty := new(MockLoyaltyAwarder)
		service := NewCompletionService(orderRepo, inventoryRepo, recipes, loyalty, nil)

		order := completedOrder(&customerID)
		order.InventoryDeducted = true
		orderRepo.On("GetByID", ctx, int64(42), int64(1)).Return(order, nil)
		loyalty.On("Award", ctx, int64(1), int64(10), int64(42), int64(11800), "ORD-0042").Return(nil)

		err := service.Complete(ctx, 42, 1)
		require.NoError(t, err)

		inventoryRepo.AssertNotCalled(t, "RecordConsumption", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		orderRepo.AssertNotCalled(t, "MarkInventoryDeducted", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("losing the flag race is not an error", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		inventoryRepo := new(MockInventoryRepository)
		recipes := new(MockRecipeBook)
		loyalty := new(MockLoyaltyAwarder)
		service := NewCompletionService(orderRepo, inventoryRepo, recipes, loyalty, nil)

		orderRepo.On("GetByID", ctx, int64(42), int64(1)).
			Return(completedOrder(&customerID), nil)
		recipes.On("Recipe", ctx, int64(1), int64(10)).
			Return([]model.RecipeLine{{IngredientID: 100, Quantity: 0.15}}, nil)
		inventoryRepo.On("RecordConsumption", ctx, int64(100), 0.3, int64(42)).Return(nil)
		orderRepo.On("MarkInventoryDeducted", ctx, int64(42), int64(1)).
			Return(repository.ErrAlreadyDeducted)
		loyalty.On("Award", ctx, int64(1), int64(10), int64(42), int64(11800), "ORD-0042").Return(nil)

		err := service.Complete(ctx, 42, 1)
		assert.NoError(t, err)
	})

	t.Run("walk-in order skips loyalty", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		inventoryRepo := new(MockInventoryRepository)
		recipes := new(MockRecipeBook)
		loyalty := new(MockLoyaltyAwarder)
		service := NewCompletionService(orderRepo, inventoryRepo, recipes, loyalty, nil)

		orderRepo.On("GetByID", ctx, int64(42), int64(1)).
			Return(completedOrder(nil), nil)
		recipes.On("Recipe", ctx, int64(1), int64(10)).
			Return([]model.RecipeLine{}, nil)
		orderRepo.On("MarkInventoryDeducted", ctx, int64(42), int64(1)).Return(nil)

		err := service.Complete(ctx, 42, 1)
		require.NoError(t, err)

		loyalty.AssertNotCalled(t, "Award",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no enrollment is a normal outcome", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		inventoryRepo := new(MockInventoryRepository)
		recipes := new(MockRecipeBook)
		loyalty := new(MockLoyaltyAwarder)
		service := NewCompletionService(orderRepo, inventoryRepo, recipes, loyalty, nil)

		order := completedOrder(&customerID)
		order.InventoryDeducted = true
		orderRepo.On("GetByID", ctx, int64(42), int64(1)).Return(order, nil)
		loyalty.On("Award", ctx, int64(1), int64(10), int64(42), int64(11800), "ORD-0042").
			Return(repository.ErrEnrollmentNotFound)

		err := service.Complete(ctx, 42, 1)
		assert.NoError(t, err)
	})

	t.Run("consumption failure surfaces for retry", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		inventoryRepo := new(MockInventoryRepository)
		recipes := new(MockRecipeBook)
		loyalty := new(MockLoyaltyAwarder)
		service := NewCompletionService(orderRepo, inventoryRepo, recipes, loyalty, nil)

		orderRepo.On("GetByID", ctx, int64(42), int64(1)).
			Return(completedOrder(&customerID), nil)
		recipes.On("Recipe", ctx, int64(1), int64(10)).
			Return([]model.RecipeLine{{IngredientID: 100, Quantity: 0.15}}, nil)
		inventoryRepo.On("RecordConsumption", ctx, int64(100), 0.3, int64(42)).
			Return(assert.AnError)

		err := service.Complete(ctx, 42, 1)
		assert.Error(t, err)

		orderRepo.AssertNotCalled(t, "MarkInventoryDeducted", mock.Anything, mock.Anything, mock.Anything)
		loyalty.AssertNotCalled(t, "Award",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestQueueCompleter_Complete(t *testing.T) {
	publisher := new(MockCompletionPublisher)
	completer := NewQueueCompleter(publisher)
	ctx := context.Background()

	publisher.On("PublishJSON", ctx, model.CompletionJob{OrderID: 42, TenantID: 1},
		map[string]string{"order_id": "42", "tenant_id": "1"}).
		Return("1-0", nil)

	require.NoError(t, completer.Complete(ctx, 42, 1))
	publisher.AssertExpectations(t)

	publisher.On("PublishJSON", ctx, model.CompletionJob{OrderID: 7, TenantID: 2}, mock.Anything).
		Return("", assert.AnError)
	assert.Error(t, completer.Complete(ctx, 7, 2))
}
