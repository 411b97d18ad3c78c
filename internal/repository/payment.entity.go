package repository

import (
	"time"

	"github.com/comanda-pos/comanda/internal/model"
)

type PaymentEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	OrderID   int64     `db:"order_id"   gorm:"column:order_id;not null;index"`
	Method    string    `db:"method"     gorm:"column:method;not null"`
	Amount    int64     `db:"amount"     gorm:"column:amount;not null"`
	Tip       int64     `db:"tip"        gorm:"column:tip;not null;default:0"`
	Status    string    `db:"status"     gorm:"column:status;not null"`
	Reference string    `db:"reference"  gorm:"column:reference"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (PaymentEntity) TableName() string {
	return "payments"
}

func toPaymentEntity(m *model.Payment) *PaymentEntity {
	if m == nil {
		return nil
	}
	return &PaymentEntity{
		ID:        m.ID,
		OrderID:   m.OrderID,
		Method:    string(m.Method),
		Amount:    m.Amount,
		Tip:       m.Tip,
		Status:    string(m.Status),
		Reference: m.Reference,
		CreatedAt: m.CreatedAt,
	}
}

func toPaymentModel(e *PaymentEntity) *model.Payment {
	if e == nil {
		return nil
	}
	return &model.Payment{
		ID:        e.ID,
		OrderID:   e.OrderID,
		Method:    model.PaymentMethod(e.Method),
		Amount:    e.Amount,
		Tip:       e.Tip,
		Status:    model.PaymentStatus(e.Status),
		Reference: e.Reference,
		CreatedAt: e.CreatedAt,
	}
}

func toPaymentModels(entities []*PaymentEntity) []*model.Payment {
	if entities == nil {
		return nil
	}
	models := make([]*model.Payment, len(entities))
	for i, e := range entities {
		models[i] = toPaymentModel(e)
	}
	return models
}
