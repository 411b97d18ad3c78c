package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/comanda-pos/comanda/internal/model"
	"github.com/comanda-pos/comanda/internal/repository"
	"github.com/comanda-pos/comanda/internal/services"
	"github.com/comanda-pos/comanda/internal/statemachine"
	xhttp "github.com/comanda-pos/comanda/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, p model.OrderCreateRequest) (*model.Order, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, id, tenantID int64) (*model.Order, error) {
	args := m.Called(ctx, id, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, f model.OrderFilter) ([]*model.Order, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, orderID, tenantID int64, next model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, orderID, tenantID, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, orderID, tenantID int64) (*model.Order, error) {
	args := m.Called(ctx, orderID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) UpdateItemStatus(ctx context.Context, orderID, itemID, tenantID int64, next model.ItemStatus) (*model.OrderItem, error) {
	args := m.Called(ctx, orderID, itemID, tenantID, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderItem), args.Error(1)
}

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	ctx.Request.Header.Set("X-Tenant-ID", "7")
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return ctx
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	t.Run("successful order creation", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		reqBody := createOrderRequest{
			BranchID: 3,
			Type:     "dine_in",
			Items: []model.OrderItemRequest{
				{MenuItemID: 10, Quantity: 2},
			},
		}
		bodyBytes, _ := json.Marshal(reqBody)

		expected := &model.Order{
			ID:          42,
			TenantID:    7,
			BranchID:    3,
			OrderNumber: "ORD-1A2B3C4D",
			Status:      model.OrderStatusPending,
			Type:        model.OrderTypeDineIn,
			Total:       11800,
		}

		svc.On("Create", mock.Anything, mock.MatchedBy(func(p model.OrderCreateRequest) bool {
			return p.TenantID == 7 && p.BranchID == 3 && p.Type == model.OrderTypeDineIn && len(p.Items) == 1
		})).Return(expected, nil)

		ctx := setupTestContext("POST", "/orders", bodyBytes)
		handler.CreateOrder(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())

		var response model.Order
		err := json.Unmarshal(ctx.Response.Body(), &response)
		require.NoError(t, err)
		assert.Equal(t, int64(42), response.ID)
		assert.Equal(t, model.OrderStatusPending, response.Status)

		svc.AssertExpectations(t)
	})

	t.Run("missing tenant", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		ctx := setupTestContext("POST", "/orders", []byte(`{}`))
		ctx.Request.Header.Del("X-Tenant-ID")
		handler.CreateOrder(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())

		var response map[string]string
		err := json.Unmarshal(ctx.Response.Body(), &response)
		require.NoError(t, err)
		assert.Equal(t, "tenant is required", response["error"])
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("tenant from query parameter", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		reqBody := createOrderRequest{
			BranchID: 3,
			Type:     "takeout",
			Items:    []model.OrderItemRequest{{MenuItemID: 10, Quantity: 1}},
		}
		bodyBytes, _ := json.Marshal(reqBody)

		svc.On("Create", mock.Anything, mock.MatchedBy(func(p model.OrderCreateRequest) bool {
			return p.TenantID == 9
		})).Return(&model.Order{ID: 1, TenantID: 9}, nil)

		ctx := setupTestContext("POST", "/orders?tenant_id=9", bodyBytes)
		ctx.Request.Header.Del("X-Tenant-ID")
		handler.CreateOrder(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		ctx := setupTestContext("POST", "/orders", []byte("invalid json"))
		handler.CreateOrder(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())

		var response map[string]string
		err := json.Unmarshal(ctx.Response.Body(), &response)
		require.NoError(t, err)
		assert.Contains(t, response["error"], "invalid JSON")
	})

	t.Run("unavailable item maps to 400", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		reqBody := createOrderRequest{
			BranchID: 3,
			Type:     "dine_in",
			Items:    []model.OrderItemRequest{{MenuItemID: 10, Quantity: 1}},
		}
		bodyBytes, _ := json.Marshal(reqBody)

		svc.On("Create", mock.Anything, mock.Anything).Return(nil, services.ErrItemUnavailable)

		ctx := setupTestContext("POST", "/orders", bodyBytes)
		handler.CreateOrder(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})
}

func TestOrderHandler_GetOrder(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		svc.On("Get", mock.Anything, int64(42), int64(7)).
			Return(&model.Order{ID: 42, TenantID: 7}, nil)

		ctx := setupTestContext("GET", "/orders/42", nil)
		ctx.SetUserValue("id", "42")
		handler.GetOrder(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		svc.On("Get", mock.Anything, int64(42), int64(7)).
			Return(nil, repository.ErrOrderNotFound)

		ctx := setupTestContext("GET", "/orders/42", nil)
		ctx.SetUserValue("id", "42")
		handler.GetOrder(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		ctx := setupTestContext("GET", "/orders/abc", nil)
		ctx.SetUserValue("id", "abc")
		handler.GetOrder(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOrderHandler_ListOrders(t *testing.T) {
	t.Run("successful list", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		expected := []*model.Order{
			{ID: 1, TenantID: 7},
			{ID: 2, TenantID: 7},
		}

		svc.On("List", mock.Anything, mock.AnythingOfType("model.OrderFilter")).
			Return(expected, int64(2), nil)

		ctx := setupTestContext("GET", "/orders?limit=10&offset=0", nil)
		handler.ListOrders(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var response listOrdersResponse
		err := json.Unmarshal(ctx.Response.Body(), &response)
		require.NoError(t, err)
		assert.Equal(t, int64(2), response.Total)
		assert.Len(t, response.Items, 2)

		svc.AssertExpectations(t)
	})

	t.Run("status filter parses CSV", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		svc.On("List", mock.Anything, mock.MatchedBy(func(f model.OrderFilter) bool {
			return len(f.Statuses) == 2 &&
				f.Statuses[0] == model.OrderStatusPending &&
				f.Statuses[1] == model.OrderStatusConfirmed
		})).Return([]*model.Order{}, int64(0), nil)

		ctx := setupTestContext("GET", "/orders?status=pending,%20confirmed", nil)
		handler.ListOrders(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("branch and pagination filters", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		svc.On("List", mock.Anything, mock.MatchedBy(func(f model.OrderFilter) bool {
			return f.BranchID != nil && *f.BranchID == 3 && f.Limit == 5 && f.Offset == 10 && f.Desc
		})).Return([]*model.Order{}, int64(0), nil)

		ctx := setupTestContext("GET", "/orders?branch_id=3&limit=5&offset=10&order=desc", nil)
		handler.ListOrders(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("time range filter", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		svc.On("List", mock.Anything, mock.MatchedBy(func(f model.OrderFilter) bool {
			return f.From != nil && f.To != nil
		})).Return([]*model.Order{}, int64(0), nil)

		ctx := setupTestContext("GET", "/orders?from=2026-01-01&to=2026-12-31", nil)
		handler.ListOrders(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		svc.On("List", mock.Anything, mock.Anything).
			Return(nil, int64(0), errors.New("database error"))

		ctx := setupTestContext("GET", "/orders", nil)
		handler.ListOrders(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})
}

func TestOrderHandler_UpdateOrderStatus(t *testing.T) {
	t.Run("successful transition", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		svc.On("UpdateStatus", mock.Anything, int64(42), int64(7), model.OrderStatusConfirmed).
			Return(&model.Order{ID: 42, Status: model.OrderStatusConfirmed}, nil)

		body, _ := json.Marshal(updateStatusRequest{Status: "confirmed"})
		ctx := setupTestContext("PUT", "/orders/42/status", body)
		ctx.SetUserValue("id", "42")
		handler.UpdateOrderStatus(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var response model.Order
		err := json.Unmarshal(ctx.Response.Body(), &response)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusConfirmed, response.Status)

		svc.AssertExpectations(t)
	})

	t.Run("invalid transition maps to 409", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		svc.On("UpdateStatus", mock.Anything, int64(42), int64(7), model.OrderStatusServed).
			Return(nil, statemachine.TransitionError(model.OrderStatusPending, model.OrderStatusServed))

		body, _ := json.Marshal(updateStatusRequest{Status: "served"})
		ctx := setupTestContext("PUT", "/orders/42/status", body)
		ctx.SetUserValue("id", "42")
		handler.UpdateOrderStatus(ctx)

		assert.Equal(t, 409, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})
}

func TestOrderHandler_CancelOrder(t *testing.T) {
	t.Run("successful cancellation", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		svc.On("Cancel", mock.Anything, int64(42), int64(7)).
			Return(&model.Order{ID: 42, Status: model.OrderStatusCancelled}, nil)

		ctx := setupTestContext("POST", "/orders/42/cancel", nil)
		ctx.SetUserValue("id", "42")
		handler.CancelOrder(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("not cancellable maps to 409", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		svc.On("Cancel", mock.Anything, int64(42), int64(7)).
			Return(nil, services.ErrNotCancellable)

		ctx := setupTestContext("POST", "/orders/42/cancel", nil)
		ctx.SetUserValue("id", "42")
		handler.CancelOrder(ctx)

		assert.Equal(t, 409, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})
}

func TestOrderHandler_UpdateItemStatus(t *testing.T) {
	t.Run("successful item transition", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		svc.On("UpdateItemStatus", mock.Anything, int64(42), int64(5), int64(7), model.ItemStatusReady).
			Return(&model.OrderItem{ID: 5, OrderID: 42, Status: model.ItemStatusReady}, nil)

		body, _ := json.Marshal(updateStatusRequest{Status: "ready"})
		ctx := setupTestContext("PUT", "/orders/42/items/5/status", body)
		ctx.SetUserValue("id", "42")
		ctx.SetUserValue("itemID", "5")
		handler.UpdateItemStatus(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var response model.OrderItem
		err := json.Unmarshal(ctx.Response.Body(), &response)
		require.NoError(t, err)
		assert.Equal(t, model.ItemStatusReady, response.Status)

		svc.AssertExpectations(t)
	})

	t.Run("item not found maps to 404", func(t *testing.T) {
		svc := new(MockOrderService)
		handler := NewOrderHandler(svc)

		svc.On("UpdateItemStatus", mock.Anything, int64(42), int64(5), int64(7), model.ItemStatusReady).
			Return(nil, repository.ErrOrderItemNotFound)

		body, _ := json.Marshal(updateStatusRequest{Status: "ready"})
		ctx := setupTestContext("PUT", "/orders/42/items/5/status", body)
		ctx.SetUserValue("id", "42")
		ctx.SetUserValue("itemID", "5")
		handler.UpdateItemStatus(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})
}

func TestHelperFunctions(t *testing.T) {
	t.Run("readJSON", func(t *testing.T) {
		data := map[string]string{"key": "value"}
		bodyBytes, _ := json.Marshal(data)
		ctx := setupTestContext("POST", "/", bodyBytes)

		var result map[string]string
		err := readJSON(ctx, &result)
		require.NoError(t, err)
		assert.Equal(t, "value", result["key"])
	})

	t.Run("writeJSON", func(t *testing.T) {
		ctx := setupTestContext("GET", "/", nil)
		writeJSON(ctx, 200, map[string]string{"message": "test"})

		assert.Equal(t, 200, ctx.Response.StatusCode())
		assert.Contains(t, string(ctx.Response.Header.Peek("Content-Type")), "application/json")
	})

	t.Run("writeError", func(t *testing.T) {
		ctx := setupTestContext("GET", "/", nil)
		writeError(ctx, 404, "not found")

		assert.Equal(t, 404, ctx.Response.StatusCode())

		var result map[string]string
		err := json.Unmarshal(ctx.Response.Body(), &result)
		require.NoError(t, err)
		assert.Equal(t, "not found", result["error"])
	})

	t.Run("parseTime RFC3339", func(t *testing.T) {
		parsed, err := parseTime("2026-01-01T12:00:00Z")
		require.NoError(t, err)
		assert.Equal(t, 2026, parsed.Year())
	})

	t.Run("parseTime date only", func(t *testing.T) {
		parsed, err := parseTime("2026-01-01")
		require.NoError(t, err)
		assert.Equal(t, 2026, parsed.Year())
	})

	t.Run("parseTime invalid", func(t *testing.T) {
		_, err := parseTime("invalid")
		assert.Error(t, err)
	})

	t.Run("tenantID prefers header over query", func(t *testing.T) {
		ctx := setupTestContext("GET", "/?tenant_id=9", nil)
		id, err := tenantID(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
	})
}
