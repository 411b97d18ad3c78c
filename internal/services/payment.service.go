package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/comanda-pos/comanda/internal/model"
	"github.com/comanda-pos/comanda/pkg/prom"
	"github.com/google/uuid"
)

var ErrOrderAlreadyPaid = errors.New("order is already fully paid")

type PaymentRepository interface {
	Create(ctx context.Context, p *model.Payment) (*model.Payment, error)
	SumCompletedByOrder(ctx context.Context, orderID int64) (int64, error)
	ListByOrder(ctx context.Context, orderID int64) ([]*model.Payment, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// OrderReader is the slice of the order repository the reconciler needs.
type OrderReader interface {
	GetByID(ctx context.Context, id, tenantID int64) (*model.Order, error)
}

type PaymentService struct {
	paymentRepo PaymentRepository
	orderRepo   OrderReader
}

func NewPaymentService(paymentRepo PaymentRepository, orderRepo OrderReader) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
	}
}

// Record reconciles a payment against the order balance. The requested
// amount is capped to what is still owed so a cashier can punch in the
// bill the customer handed over without computing change first; the tip
// rides along uncapped. A payment never changes order status.
func (s *PaymentService) Record(ctx context.Context, p model.PaymentCreateRequest) (*model.PaymentResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, p.OrderID, p.TenantID)
	if err != nil {
		return nil, err
	}

	var result *model.PaymentResult
	err = s.paymentRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		previouslyPaid, err := s.paymentRepo.SumCompletedByOrder(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("sum payments: %w", err)
		}

		remaining := order.Total - previouslyPaid
		if remaining <= 0 {
			return ErrOrderAlreadyPaid
		}

		effective := p.Amount
		if effective > remaining {
			effective = remaining
		}

		reference := p.Reference
		if reference == "" {
			reference = uuid.NewString()
		}

		payment, err := s.paymentRepo.Create(ctx, &model.Payment{
			OrderID:   order.ID,
			Method:    p.Method,
			Amount:    effective,
			Tip:       p.Tip,
			Status:    model.PaymentStatusCompleted,
			Reference: reference,
		})
		if err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		totalPaid := previouslyPaid + effective
		result = &model.PaymentResult{
			Payment:   payment,
			TotalPaid: totalPaid,
			Remaining: max64(0, order.Total-totalPaid),
			FullyPaid: totalPaid >= order.Total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	prom.IncCounterVec(prom.SystemPayments, prom.MetricPaymentsRecorded, string(p.Method))

	return result, nil
}

func (s *PaymentService) ListByOrder(ctx context.Context, orderID, tenantID int64) ([]*model.Payment, error) {
	if _, err := s.orderRepo.GetByID(ctx, orderID, tenantID); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByOrder(ctx, orderID)
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
