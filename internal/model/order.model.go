package model

import (
	"errors"
	"fmt"
	"time"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ItemStatus is the lifecycle state of a single order line, advanced
// independently of the order so the kitchen can flag individual dishes.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusPreparing ItemStatus = "preparing"
	ItemStatusReady     ItemStatus = "ready"
	ItemStatusServed    ItemStatus = "served"
	ItemStatusCancelled ItemStatus = "cancelled"
)

type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeout  OrderType = "takeout"
	OrderTypeDelivery OrderType = "delivery"
)

type Order struct {
	ID                int64       `json:"id"`
	TenantID          int64       `json:"tenant_id"`
	BranchID          int64       `json:"branch_id"`
	OrderNumber       string      `json:"order_number"`
	Status            OrderStatus `json:"status"`
	Type              OrderType   `json:"type"`
	Total             int64       `json:"total"` // minor currency units
	TableSessionID    *int64      `json:"table_session_id,omitempty"`
	CustomerID        *int64      `json:"customer_id,omitempty"`
	InventoryDeducted bool        `json:"inventory_deducted"`
	Items             []*OrderItem `json:"items,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// OrderItem is a price snapshot taken at order time; later catalog edits
// never change it.
type OrderItem struct {
	ID         int64      `json:"id"`
	OrderID    int64      `json:"order_id"`
	MenuItemID int64      `json:"menu_item_id"`
	Name       string     `json:"name"`
	Quantity   int        `json:"quantity"`
	UnitPrice  int64      `json:"unit_price"`
	LineTotal  int64      `json:"line_total"`
	Status     ItemStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
}

// OrderItemRequest is one requested line on a new order. Prices are
// deliberately absent: the catalog is the only price authority.
type OrderItemRequest struct {
	MenuItemID  int64   `json:"menu_item_id"`
	Quantity    int     `json:"quantity"`
	ModifierIDs []int64 `json:"modifier_ids,omitempty"`
}

type OrderCreateRequest struct {
	TenantID       int64
	BranchID       int64
	Type           OrderType
	Items          []OrderItemRequest
	CustomerID     *int64
	TableSessionID *int64
}

func (r OrderCreateRequest) Validate() error {
	if r.TenantID == 0 {
		return errors.New("tenant_id is required")
	}
	if r.BranchID == 0 {
		return errors.New("branch_id is required")
	}
	if len(r.Items) == 0 {
		return errors.New("order must contain at least one item")
	}
	for i, it := range r.Items {
		if it.MenuItemID == 0 {
			return fmt.Errorf("item %d: menu_item_id is required", i)
		}
		if it.Quantity < 1 {
			return fmt.Errorf("item %d: quantity must be at least 1", i)
		}
	}
	switch r.Type {
	case OrderTypeDineIn, OrderTypeTakeout, OrderTypeDelivery:
	default:
		return fmt.Errorf("unknown order type %q", r.Type)
	}
	return nil
}

// OrderFilter controls List queries.
type OrderFilter struct {
	TenantID *int64
	BranchID *int64
	Statuses []OrderStatus
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
	Desc     bool
}

// ResolvedItem is what the catalog collaborator returns for a requested
// menu item plus modifiers.
type ResolvedItem struct {
	MenuItemID int64
	Name       string
	UnitPrice  int64 // minor units, modifiers included
	Available  bool
}

// RecipeLine is one ingredient requirement of a menu item, per unit sold.
type RecipeLine struct {
	IngredientID int64
	Quantity     float64
}

// CompletionJob is the payload queued after an order commits to completed.
type CompletionJob struct {
	OrderID  int64 `json:"order_id"`
	TenantID int64 `json:"tenant_id"`
}
