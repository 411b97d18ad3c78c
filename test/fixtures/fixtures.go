package fixtures

import (
	"time"

	"github.com/comanda-pos/comanda/internal/model"
)

var (
	TestMenuItemCarbonara = model.ResolvedItem{
		MenuItemID: 10,
		Name:       "Spaghetti Carbonara",
		UnitPrice:  5400,
		Available:  true,
	}

	TestMenuItemPizza = model.ResolvedItem{
		MenuItemID: 11,
		Name:       "Margherita Pizza",
		UnitPrice:  4800,
		Available:  true,
	}

	TestMenuItemSoldOut = model.ResolvedItem{
		MenuItemID: 12,
		Name:       "Caesar Salad",
		UnitPrice:  3600,
		Available:  false,
	}
)

var (
	TestRecipeCarbonara = []model.RecipeLine{
		{IngredientID: 1, Quantity: 0.15},
		{IngredientID: 2, Quantity: 2},
	}

	TestRecipePizza = []model.RecipeLine{
		{IngredientID: 4, Quantity: 0.25},
	}
)

func NewTestOrder(tenantID, branchID int64, status model.OrderStatus) *model.Order {
	now := time.Now()
	return &model.Order{
		TenantID:    tenantID,
		BranchID:    branchID,
		OrderNumber: "ORD-FIXTURE",
		Status:      status,
		Type:        model.OrderTypeDineIn,
		Total:       5400,
		Items: []*model.OrderItem{
			{
				MenuItemID: TestMenuItemCarbonara.MenuItemID,
				Name:       TestMenuItemCarbonara.Name,
				Quantity:   1,
				UnitPrice:  TestMenuItemCarbonara.UnitPrice,
				LineTotal:  TestMenuItemCarbonara.UnitPrice,
				Status:     model.ItemStatusPending,
				CreatedAt:  now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func NewTestOrderCreateRequest(tenantID, branchID int64, items ...model.OrderItemRequest) model.OrderCreateRequest {
	if len(items) == 0 {
		items = []model.OrderItemRequest{
			{MenuItemID: TestMenuItemCarbonara.MenuItemID, Quantity: 1},
		}
	}
	return model.OrderCreateRequest{
		TenantID: tenantID,
		BranchID: branchID,
		Type:     model.OrderTypeDineIn,
		Items:    items,
	}
}

func NewTestSessionRequest(tenantID, branchID, tableID int64) model.SessionCreateRequest {
	return model.SessionCreateRequest{
		TenantID:     tenantID,
		BranchID:     branchID,
		TableID:      tableID,
		CustomerName: "Walk-in Guest",
	}
}

func NewTestPaymentRequest(tenantID, orderID, amount int64, method model.PaymentMethod) model.PaymentCreateRequest {
	return model.PaymentCreateRequest{
		OrderID:  orderID,
		TenantID: tenantID,
		Method:   method,
		Amount:   amount,
	}
}
