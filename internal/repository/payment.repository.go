package repository

import (
	"context"

	"github.com/comanda-pos/comanda/internal/model"
	"github.com/comanda-pos/comanda/pkg/pg"
)

type PaymentRepository struct {
	*pg.DB
}

func NewPaymentRepository(db *pg.DB) *PaymentRepository {
	return &PaymentRepository{
		db,
	}
}

func (r *PaymentRepository) Create(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	entity := toPaymentEntity(p)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toPaymentModel(entity), nil
}

// SumCompletedByOrder returns the total of completed payment amounts on an
// order, tips excluded.
func (r *PaymentRepository) SumCompletedByOrder(ctx context.Context, orderID int64) (int64, error) {
	var total int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&PaymentEntity{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("order_id = ? AND status = ?", orderID, string(model.PaymentStatusCompleted)).
		Scan(&total).
		Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *PaymentRepository) ListByOrder(ctx context.Context, orderID int64) ([]*model.Payment, error) {
	var entities []*PaymentEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toPaymentModels(entities), nil
}
