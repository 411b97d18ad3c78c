package model

import (
	"errors"
	"time"
)

type PaymentStatus string

const (
	// PaymentStatusCompleted is the only status this core writes; there is
	// no authorize/settle phase, a recorded payment is a settled fact.
	PaymentStatusCompleted PaymentStatus = "completed"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

type Payment struct {
	ID        int64         `json:"id"`
	OrderID   int64         `json:"order_id"`
	Method    PaymentMethod `json:"method"`
	Amount    int64         `json:"amount"` // effective amount after capping
	Tip       int64         `json:"tip"`
	Status    PaymentStatus `json:"status"`
	Reference string        `json:"reference,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

type PaymentCreateRequest struct {
	OrderID   int64
	TenantID  int64
	Method    PaymentMethod
	Amount    int64
	Tip       int64
	Reference string
}

func (r PaymentCreateRequest) Validate() error {
	if r.OrderID == 0 {
		return errors.New("order_id is required")
	}
	if r.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if r.Tip < 0 {
		return errors.New("tip cannot be negative")
	}
	switch r.Method {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer:
	default:
		return errors.New("unknown payment method")
	}
	return nil
}

// PaymentResult is the recorded payment plus the reconciled balance the
// caller's UI renders. FullyPaid is informational only and never drives an
// order status transition.
type PaymentResult struct {
	Payment   *Payment `json:"payment"`
	TotalPaid int64    `json:"total_paid"`
	Remaining int64    `json:"remaining"`
	FullyPaid bool     `json:"fully_paid"`
}
