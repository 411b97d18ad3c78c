package repository

import (
	"time"

	"github.com/comanda-pos/comanda/internal/model"
)

type InventoryItemEntity struct {
	ID           int64   `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	TenantID     int64   `db:"tenant_id"     gorm:"column:tenant_id;not null;index"`
	Name         string  `db:"name"          gorm:"column:name;not null"`
	Unit         string  `db:"unit"          gorm:"column:unit;not null"`
	CurrentStock float64 `db:"current_stock" gorm:"column:current_stock;not null;default:0"`
}

func (InventoryItemEntity) TableName() string {
	return "inventory_items"
}

type InventoryMovementEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	ItemID    int64     `db:"item_id"    gorm:"column:item_id;not null;index"`
	Type      string    `db:"type"       gorm:"column:type;not null"`
	Quantity  float64   `db:"quantity"   gorm:"column:quantity;not null"`
	OrderID   *int64    `db:"order_id"   gorm:"column:order_id;index"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (InventoryMovementEntity) TableName() string {
	return "inventory_movements"
}

func toInventoryItemModel(e *InventoryItemEntity) *model.InventoryItem {
	if e == nil {
		return nil
	}
	return &model.InventoryItem{
		ID:           e.ID,
		TenantID:     e.TenantID,
		Name:         e.Name,
		Unit:         e.Unit,
		CurrentStock: e.CurrentStock,
	}
}

func toMovementModel(e *InventoryMovementEntity) *model.InventoryMovement {
	if e == nil {
		return nil
	}
	return &model.InventoryMovement{
		ID:        e.ID,
		ItemID:    e.ItemID,
		Type:      model.MovementType(e.Type),
		Quantity:  e.Quantity,
		OrderID:   e.OrderID,
		CreatedAt: e.CreatedAt,
	}
}

func toMovementModels(entities []*InventoryMovementEntity) []*model.InventoryMovement {
	if entities == nil {
		return nil
	}
	models := make([]*model.InventoryMovement, len(entities))
	for i, e := range entities {
		models[i] = toMovementModel(e)
	}
	return models
}
