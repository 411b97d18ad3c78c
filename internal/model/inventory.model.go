package model

import "time"

type InventoryItem struct {
	ID           int64   `json:"id"`
	TenantID     int64   `json:"tenant_id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	CurrentStock float64 `json:"current_stock"`
}

type MovementType string

const (
	// MovementConsumption is the only movement type this core writes;
	// purchases and adjustments come from the inventory system proper.
	MovementConsumption MovementType = "consumption"
)

// InventoryMovement is the append-only audit trail behind the cached
// current_stock total.
type InventoryMovement struct {
	ID        int64        `json:"id"`
	ItemID    int64        `json:"item_id"`
	Type      MovementType `json:"type"`
	Quantity  float64      `json:"quantity"` // positive; direction implied by type
	OrderID   *int64       `json:"order_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
