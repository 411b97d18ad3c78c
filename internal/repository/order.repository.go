package repository

import (
	"context"
	"errors"

	"github.com/comanda-pos/comanda/internal/model"
	"github.com/comanda-pos/comanda/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")
	// ErrAlreadyDeducted is returned by MarkInventoryDeducted when the flag
	// was already set, so callers can treat the deduction as done.
	ErrAlreadyDeducted = errors.New("inventory already deducted")
)

type OrderRepository struct {
	*pg.DB
}

func NewOrderRepository(db *pg.DB) *OrderRepository {
	return &OrderRepository{
		db,
	}
}

// Create persists the order together with its items. Callers wanting
// atomicity with other writes wrap this in WithinTransaction; gorm already
// inserts the association rows in the same transaction as the order.
func (r *OrderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	entity := toOrderEntity(order)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toOrderModel(entity), nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id, tenantID int64) (*model.Order, error) {
	var entity OrderEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Items").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return toOrderModel(&entity), nil
}

func (r *OrderRepository) List(ctx context.Context, f model.OrderFilter) ([]*model.Order, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&OrderEntity{})

	if f.TenantID != nil {
		q = q.Where("tenant_id = ?", *f.TenantID)
	}
	if f.BranchID != nil {
		q = q.Where("branch_id = ?", *f.BranchID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at"
	if f.Desc {
		order += " DESC"
	} else {
		order += " ASC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*OrderEntity
	if err := q.Preload("Items").Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toOrderModels(entities), total, nil
}

func (r *OrderRepository) ListByTableSession(ctx context.Context, sessionID int64) ([]*model.Order, error) {
	var entities []*OrderEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Items").
		Where("table_session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toOrderModels(entities), nil
}

// UpdateStatusFrom moves the order from one status to another with the
// expected status in the WHERE clause, so two writers racing from the
// same snapshot cannot both commit. false means the order is gone or no
// longer in the expected status.
func (r *OrderRepository) UpdateStatusFrom(ctx context.Context, id, tenantID int64, from, to model.OrderStatus) (bool, error) {
	result := r.Write(ctx).WithContext(ctx).
		Model(&OrderEntity{}).
		Where("id = ? AND tenant_id = ? AND status = ?", id, tenantID, string(from)).
		Update("status", string(to))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *OrderRepository) GetItem(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error) {
	var entity OrderItemEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ? AND order_id = ?", itemID, orderID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderItemNotFound
		}
		return nil, err
	}
	return toOrderItemModel(&entity), nil
}

func (r *OrderRepository) UpdateItemStatus(ctx context.Context, orderID, itemID int64, status model.ItemStatus) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&OrderItemEntity{}).
		Where("id = ? AND order_id = ?", itemID, orderID).
		Update("status", string(status))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderItemNotFound
	}
	return nil
}

// MarkInventoryDeducted flips the idempotency flag, guarded in the UPDATE
// itself so two concurrent completion runs cannot both win.
func (r *OrderRepository) MarkInventoryDeducted(ctx context.Context, id, tenantID int64) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&OrderEntity{}).
		Where("id = ? AND tenant_id = ? AND inventory_deducted = ?", id, tenantID, false).
		Update("inventory_deducted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var entity OrderEntity
		err := r.Read(ctx).WithContext(ctx).
			Select("id").
			Where("id = ? AND tenant_id = ?", id, tenantID).
			First(&entity).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		return ErrAlreadyDeducted
	}
	return nil
}
