package repository

import (
	"time"

	"github.com/comanda-pos/comanda/internal/model"
)

type OrderEntity struct {
	ID                int64     `db:"id"                 gorm:"primaryKey;autoIncrement;column:id"`
	TenantID          int64     `db:"tenant_id"          gorm:"column:tenant_id;not null;index"`
	BranchID          int64     `db:"branch_id"          gorm:"column:branch_id;not null;index"`
	OrderNumber       string    `db:"order_number"       gorm:"column:order_number;not null"`
	Status            string    `db:"status"             gorm:"column:status;not null;default:pending"`
	Type              string    `db:"type"               gorm:"column:type;not null"`
	Total             int64     `db:"total"              gorm:"column:total;not null"`
	TableSessionID    *int64    `db:"table_session_id"   gorm:"column:table_session_id;index"`
	CustomerID        *int64    `db:"customer_id"        gorm:"column:customer_id;index"`
	InventoryDeducted bool      `db:"inventory_deducted" gorm:"column:inventory_deducted;not null;default:false"`
	CreatedAt         time.Time `db:"created_at"         gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `db:"updated_at"         gorm:"column:updated_at;autoUpdateTime"`

	Items []*OrderItemEntity `gorm:"foreignKey:OrderID"`
}

func (OrderEntity) TableName() string {
	return "orders"
}

type OrderItemEntity struct {
	ID         int64     `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	OrderID    int64     `db:"order_id"     gorm:"column:order_id;not null;index"`
	MenuItemID int64     `db:"menu_item_id" gorm:"column:menu_item_id;not null"`
	Name       string    `db:"name"         gorm:"column:name;not null"`
	Quantity   int       `db:"quantity"     gorm:"column:quantity;not null"`
	UnitPrice  int64     `db:"unit_price"   gorm:"column:unit_price;not null"`
	LineTotal  int64     `db:"line_total"   gorm:"column:line_total;not null"`
	Status     string    `db:"status"       gorm:"column:status;not null;default:pending"`
	CreatedAt  time.Time `db:"created_at"   gorm:"column:created_at;autoCreateTime"`
}

func (OrderItemEntity) TableName() string {
	return "order_items"
}

func toOrderEntity(m *model.Order) *OrderEntity {
	if m == nil {
		return nil
	}
	e := &OrderEntity{
		ID:                m.ID,
		TenantID:          m.TenantID,
		BranchID:          m.BranchID,
		OrderNumber:       m.OrderNumber,
		Status:            string(m.Status),
		Type:              string(m.Type),
		Total:             m.Total,
		TableSessionID:    m.TableSessionID,
		CustomerID:        m.CustomerID,
		InventoryDeducted: m.InventoryDeducted,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	for _, it := range m.Items {
		e.Items = append(e.Items, toOrderItemEntity(it))
	}
	return e
}

func toOrderModel(e *OrderEntity) *model.Order {
	if e == nil {
		return nil
	}
	m := &model.Order{
		ID:                e.ID,
		TenantID:          e.TenantID,
		BranchID:          e.BranchID,
		OrderNumber:       e.OrderNumber,
		Status:            model.OrderStatus(e.Status),
		Type:              model.OrderType(e.Type),
		Total:             e.Total,
		TableSessionID:    e.TableSessionID,
		CustomerID:        e.CustomerID,
		InventoryDeducted: e.InventoryDeducted,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
	for _, it := range e.Items {
		m.Items = append(m.Items, toOrderItemModel(it))
	}
	return m
}

func toOrderModels(entities []*OrderEntity) []*model.Order {
	if entities == nil {
		return nil
	}
	models := make([]*model.Order, len(entities))
	for i, e := range entities {
		models[i] = toOrderModel(e)
	}
	return models
}

func toOrderItemEntity(m *model.OrderItem) *OrderItemEntity {
	if m == nil {
		return nil
	}
	return &OrderItemEntity{
		ID:         m.ID,
		OrderID:    m.OrderID,
		MenuItemID: m.MenuItemID,
		Name:       m.Name,
		Quantity:   m.Quantity,
		UnitPrice:  m.UnitPrice,
		LineTotal:  m.LineTotal,
		Status:     string(m.Status),
		CreatedAt:  m.CreatedAt,
	}
}

func toOrderItemModel(e *OrderItemEntity) *model.OrderItem {
	if e == nil {
		return nil
	}
	return &model.OrderItem{
		ID:         e.ID,
		OrderID:    e.OrderID,
		MenuItemID: e.MenuItemID,
		Name:       e.Name,
		Quantity:   e.Quantity,
		UnitPrice:  e.UnitPrice,
		LineTotal:  e.LineTotal,
		Status:     model.ItemStatus(e.Status),
		CreatedAt:  e.CreatedAt,
	}
}
