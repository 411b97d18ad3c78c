package services

import (
	"context"
	"testing"
	"time"

	"github.com/comanda-pos/comanda/internal/broadcast"
	"github.com/comanda-pos/comanda/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func waitForEvent(t *testing.T, ch <-chan broadcast.Event) broadcast.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("expected a broadcast event")
		return broadcast.Event{}
	}
}

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()

	orderRepo := new(MockOrderRepository)
	catalog := new(MockCatalog)
	completer := new(MockCompleter)
	bc := broadcast.New()

	service := NewOrderService(orderRepo, catalog, bc, completer)

	branchCh, cancelBranch := bc.Subscribe(broadcast.BranchTopic(1))
	defer cancelBranch()
	kitchenCh, cancelKitchen := bc.Subscribe(broadcast.KitchenTopic(1))
	defer cancelKitchen()

	catalog.On("ResolveItem", ctx, int64(1), int64(10), []int64(nil)).
		Return(&model.ResolvedItem{MenuItemID: 10, Name: "Tacos al pastor", UnitPrice: 4500, Available: true}, nil)
	catalog.On("ResolveItem", ctx, int64(1), int64(11), []int64{3}).
		Return(&model.ResolvedItem{MenuItemID: 11, Name: "Horchata", UnitPrice: 1400, Available: true}, nil)

	orderRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).
		Return(nil)
	orderRepo.On("Create", ctx, mock.AnythingOfType("*model.Order")).
		Return(&model.Order{
			ID:          1,
			TenantID:    1,
			BranchID:    1,
			OrderNumber: "ORD-AB12CD34",
			Status:      model.OrderStatusPending,
			Type:        model.OrderTypeDineIn,
			Total:       2*4500 + 1400,
		}, nil)

	order, err := service.Create(ctx, model.OrderCreateRequest{
		TenantID: 1,
		BranchID: 1,
		Type:     model.OrderTypeDineIn,
		Items: []model.OrderItemRequest{
			{MenuItemID: 10, Quantity: 2},
			{MenuItemID: 11, Quantity: 1, ModifierIDs: []int64{3}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, int64(10400), order.Total)

	// The catalog price won, regardless of anything the client knew.
	created := orderRepo.Calls[1].Arguments.Get(1).(*model.Order)
	require.Len(t, created.Items, 2)
	assert.Equal(t, int64(4500), created.Items[0].UnitPrice)
	assert.Equal(t, int64(9000), created.Items[0].LineTotal)
	assert.Equal(t, model.ItemStatusPending, created.Items[0].Status)

	ev := waitForEvent(t, branchCh)
	assert.Equal(t, broadcast.EventOrderNew, ev.Type)
	ev = waitForEvent(t, kitchenCh)
	assert.Equal(t, broadcast.EventOrderNew, ev.Type)

	orderRepo.AssertExpectations(t)
	catalog.AssertExpectations(t)
}

func TestOrderService_Create_UnavailableItem(t *testing.T) {
	ctx := context.Background()

	orderRepo := new(MockOrderRepository)
	catalog := new(MockCatalog)
	service := NewOrderService(orderRepo, catalog, broadcast.New(), new(MockCompleter))

	catalog.On("ResolveItem", ctx, int64(1), int64(10), []int64(nil)).
		Return(&model.ResolvedItem{MenuItemID: 10, Name: "Ceviche", Available: false}, nil)

	_, err := service.Create(ctx, model.OrderCreateRequest{
		TenantID: 1,
		BranchID: 1,
		Type:     model.OrderTypeTakeout,
		Items:    []model.OrderItemRequest{{MenuItemID: 10, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrItemUnavailable)
	assert.Contains(t, err.Error(), "Ceviche")

	orderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderService_Create_Validation(t *testing.T) {
	service := NewOrderService(new(MockOrderRepository), new(MockCatalog), broadcast.New(), new(MockCompleter))

	_, err := service.Create(context.Background(), model.OrderCreateRequest{
		TenantID: 1,
		BranchID: 1,
		Type:     model.OrderTypeDineIn,
	})
	assert.Error(t, err)

	_, err = service.Create(context.Background(), model.OrderCreateRequest{
		TenantID: 1,
		BranchID: 1,
		Type:     model.OrderTypeDineIn,
		Items:    []model.OrderItemRequest{{MenuItemID: 10, Quantity: 0}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 0")
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("valid transition", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		bc := broadcast.New()
		service := NewOrderService(orderRepo, new(MockCatalog), bc, new(MockCompleter))

		ch, cancel := bc.Subscribe(broadcast.BranchTopic(1))
		defer cancel()

		orderRepo.On("GetByID", ctx, int64(5), int64(1)).
			Return(&model.Order{ID: 5, TenantID: 1, BranchID: 1, Status: model.OrderStatusPending}, nil)
		orderRepo.On("UpdateStatusFrom", ctx, int64(5), int64(1), model.OrderStatusPending, model.OrderStatusConfirmed).
			Return(true, nil)

		order, err := service.UpdateStatus(ctx, 5, 1, model.OrderStatusConfirmed)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusConfirmed, order.Status)

		ev := waitForEvent(t, ch)
		assert.Equal(t, broadcast.EventOrderUpdated, ev.Type)

		orderRepo.AssertExpectations(t)
	})

	t.Run("invalid transition rejected", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		service := NewOrderService(orderRepo, new(MockCatalog), broadcast.New(), new(MockCompleter))

		orderRepo.On("GetByID", ctx, int64(5), int64(1)).
			Return(&model.Order{ID: 5, TenantID: 1, BranchID: 1, Status: model.OrderStatusPending}, nil)

		_, err := service.UpdateStatus(ctx, 5, 1, model.OrderStatusReady)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pending")
		assert.Contains(t, err.Error(), "ready")

		orderRepo.AssertNotCalled(t, "UpdateStatusFrom", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("completed triggers completion", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		completer := new(MockCompleter)
		service := NewOrderService(orderRepo, new(MockCatalog), broadcast.New(), completer)

		orderRepo.On("GetByID", ctx, int64(5), int64(1)).
			Return(&model.Order{ID: 5, TenantID: 1, BranchID: 1, Status: model.OrderStatusServed}, nil)
		orderRepo.On("UpdateStatusFrom", ctx, int64(5), int64(1), model.OrderStatusServed, model.OrderStatusCompleted).
			Return(true, nil)
		completer.On("Complete", ctx, int64(5), int64(1)).Return(nil)

		order, err := service.UpdateStatus(ctx, 5, 1, model.OrderStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCompleted, order.Status)

		completer.AssertExpectations(t)
	})

	t.Run("completion failure does not fail the transition", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		completer := new(MockCompleter)
		service := NewOrderService(orderRepo, new(MockCatalog), broadcast.New(), completer)

		orderRepo.On("GetByID", ctx, int64(5), int64(1)).
			Return(&model.Order{ID: 5, TenantID: 1, BranchID: 1, Status: model.OrderStatusServed}, nil)
		orderRepo.On("UpdateStatusFrom", ctx, int64(5), int64(1), model.OrderStatusServed, model.OrderStatusCompleted).
			Return(true, nil)
		completer.On("Complete", ctx, int64(5), int64(1)).Return(assert.AnError)

		order, err := service.UpdateStatus(ctx, 5, 1, model.OrderStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCompleted, order.Status)
	})

	t.Run("lost race surfaces a conflict", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		completer := new(MockCompleter)
		service := NewOrderService(orderRepo, new(MockCatalog), broadcast.New(), completer)

		// Another writer moved the order between the read and the guarded
		// update; the stale transition must not stick.
		orderRepo.On("GetByID", ctx, int64(5), int64(1)).
			Return(&model.Order{ID: 5, TenantID: 1, BranchID: 1, Status: model.OrderStatusPending}, nil)
		orderRepo.On("UpdateStatusFrom", ctx, int64(5), int64(1), model.OrderStatusPending, model.OrderStatusConfirmed).
			Return(false, nil)

		_, err := service.UpdateStatus(ctx, 5, 1, model.OrderStatusConfirmed)
		assert.ErrorIs(t, err, ErrOrderStatusChanged)

		completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOrderService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("pending order cancels", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		service := NewOrderService(orderRepo, new(MockCatalog), broadcast.New(), new(MockCompleter))

		orderRepo.On("GetByID", ctx, int64(7), int64(1)).
			Return(&model.Order{ID: 7, TenantID: 1, BranchID: 1, Status: model.OrderStatusPending}, nil)
		orderRepo.On("UpdateStatusFrom", ctx, int64(7), int64(1), model.OrderStatusPending, model.OrderStatusCancelled).
			Return(true, nil)

		order, err := service.Cancel(ctx, 7, 1)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCancelled, order.Status)
	})

	t.Run("confirmed order refuses", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		service := NewOrderService(orderRepo, new(MockCatalog), broadcast.New(), new(MockCompleter))

		orderRepo.On("GetByID", ctx, int64(7), int64(1)).
			Return(&model.Order{ID: 7, TenantID: 1, BranchID: 1, Status: model.OrderStatusConfirmed}, nil)

		_, err := service.Cancel(ctx, 7, 1)
		assert.ErrorIs(t, err, ErrNotCancellable)

		orderRepo.AssertNotCalled(t, "UpdateStatusFrom", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOrderService_UpdateItemStatus(t *testing.T) {
	ctx := context.Background()
	sessionID := int64(3)

	t.Run("valid item transition reaches session topic", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		bc := broadcast.New()
		service := NewOrderService(orderRepo, new(MockCatalog), bc, new(MockCompleter))

		ch, cancel := bc.Subscribe(broadcast.SessionTopic(sessionID))
		defer cancel()

		orderRepo.On("GetByID", ctx, int64(5), int64(1)).
			Return(&model.Order{ID: 5, TenantID: 1, BranchID: 1, TableSessionID: &sessionID}, nil)
		orderRepo.On("GetItem", ctx, int64(5), int64(20)).
			Return(&model.OrderItem{ID: 20, OrderID: 5, Status: model.ItemStatusPending}, nil)
		orderRepo.On("UpdateItemStatus", ctx, int64(5), int64(20), model.ItemStatusPreparing).
			Return(nil)

		item, err := service.UpdateItemStatus(ctx, 5, 20, 1, model.ItemStatusPreparing)
		require.NoError(t, err)
		assert.Equal(t, model.ItemStatusPreparing, item.Status)

		ev := waitForEvent(t, ch)
		assert.Equal(t, broadcast.EventOrderItemStatus, ev.Type)
	})

	t.Run("invalid item transition rejected", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		service := NewOrderService(orderRepo, new(MockCatalog), broadcast.New(), new(MockCompleter))

		orderRepo.On("GetByID", ctx, int64(5), int64(1)).
			Return(&model.Order{ID: 5, TenantID: 1, BranchID: 1}, nil)
		orderRepo.On("GetItem", ctx, int64(5), int64(20)).
			Return(&model.OrderItem{ID: 20, OrderID: 5, Status: model.ItemStatusServed}, nil)

		_, err := service.UpdateItemStatus(ctx, 5, 20, 1, model.ItemStatusPending)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "served")
	})
}
