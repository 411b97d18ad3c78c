package repository

import (
	"context"
	"errors"

	"github.com/comanda-pos/comanda/internal/model"
	"github.com/comanda-pos/comanda/pkg/pg"
	"gorm.io/gorm"
)

var ErrInventoryItemNotFound = errors.New("inventory item not found")

type InventoryRepository struct {
	*pg.DB
}

func NewInventoryRepository(db *pg.DB) *InventoryRepository {
	return &InventoryRepository{
		db,
	}
}

// RecordConsumption appends a consumption movement and decrements the
// cached stock total. The decrement is a single UPDATE expression, never a
// read-modify-write, so concurrent completions against the same ingredient
// cannot lose updates. Stock is allowed to go negative: the kitchen already
// used the ingredient, the count being wrong is an inventory problem, not a
// reason to fail the order.
func (r *InventoryRepository) RecordConsumption(ctx context.Context, itemID int64, quantity float64, orderID int64) error {
	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		movement := &InventoryMovementEntity{
			ItemID:   itemID,
			Type:     string(model.MovementConsumption),
			Quantity: quantity,
			OrderID:  &orderID,
		}
		if err := r.Write(ctx).WithContext(ctx).Create(movement).Error; err != nil {
			return err
		}

		result := r.Write(ctx).WithContext(ctx).
			Model(&InventoryItemEntity{}).
			Where("id = ?", itemID).
			Update("current_stock", gorm.Expr("current_stock - ?", quantity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInventoryItemNotFound
		}
		return nil
	})
}

func (r *InventoryRepository) GetItem(ctx context.Context, id, tenantID int64) (*model.InventoryItem, error) {
	var entity InventoryItemEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInventoryItemNotFound
		}
		return nil, err
	}
	return toInventoryItemModel(&entity), nil
}

func (r *InventoryRepository) ListMovementsByOrder(ctx context.Context, orderID int64) ([]*model.InventoryMovement, error) {
	var entities []*InventoryMovementEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toMovementModels(entities), nil
}
