package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/comanda-pos/comanda/internal/broadcast"
	"github.com/comanda-pos/comanda/internal/model"
	"github.com/comanda-pos/comanda/internal/statemachine"
	"github.com/comanda-pos/comanda/pkg/logger"
	"github.com/comanda-pos/comanda/pkg/prom"
	"github.com/google/uuid"
)

var (
	ErrNotCancellable  = errors.New("order can no longer be cancelled")
	ErrItemUnavailable = errors.New("item is not available")
	// ErrOrderStatusChanged means another writer moved the order between
	// the snapshot read and the guarded update.
	ErrOrderStatusChanged = errors.New("order status changed concurrently")
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id, tenantID int64) (*model.Order, error)
	List(ctx context.Context, f model.OrderFilter) ([]*model.Order, int64, error)
	UpdateStatusFrom(ctx context.Context, id, tenantID int64, from, to model.OrderStatus) (bool, error)
	GetItem(ctx context.Context, orderID, itemID int64) (*model.OrderItem, error)
	UpdateItemStatus(ctx context.Context, orderID, itemID int64, status model.ItemStatus) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Catalog is the pricing collaborator. It is the only price authority:
// whatever the client sent is ignored.
type Catalog interface {
	ResolveItem(ctx context.Context, tenantID, menuItemID int64, modifierIDs []int64) (*model.ResolvedItem, error)
}

// Completer runs (or schedules) the completion side effects for an order
// that just reached completed.
type Completer interface {
	Complete(ctx context.Context, orderID, tenantID int64) error
}

type OrderService struct {
	orderRepo   OrderRepository
	catalog     Catalog
	broadcaster broadcast.Broadcaster
	completer   Completer
}

func NewOrderService(orderRepo OrderRepository, catalog Catalog, broadcaster broadcast.Broadcaster, completer Completer) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		catalog:     catalog,
		broadcaster: broadcaster,
		completer:   completer,
	}
}

func (s *OrderService) Create(ctx context.Context, p model.OrderCreateRequest) (*model.Order, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	order := &model.Order{
		TenantID:       p.TenantID,
		BranchID:       p.BranchID,
		OrderNumber:    newOrderNumber(),
		Status:         model.OrderStatusPending,
		Type:           p.Type,
		CustomerID:     p.CustomerID,
		TableSessionID: p.TableSessionID,
	}

	// Resolve every line against the catalog before writing anything.
	for _, req := range p.Items {
		resolved, err := s.catalog.ResolveItem(ctx, p.TenantID, req.MenuItemID, req.ModifierIDs)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", req.MenuItemID, err)
		}
		if !resolved.Available {
			return nil, fmt.Errorf("item %q: %w", resolved.Name, ErrItemUnavailable)
		}

		lineTotal := resolved.UnitPrice * int64(req.Quantity)
		order.Items = append(order.Items, &model.OrderItem{
			MenuItemID: resolved.MenuItemID,
			Name:       resolved.Name,
			Quantity:   req.Quantity,
			UnitPrice:  resolved.UnitPrice,
			LineTotal:  lineTotal,
			Status:     model.ItemStatusPending,
		})
		order.Total += lineTotal
	}

	var created *model.Order
	err := s.orderRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.orderRepo.Create(ctx, order)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Broadcast strictly after commit so nobody sees an order the store
	// doesn't have.
	ev := broadcast.NewEvent(broadcast.EventOrderNew, created)
	s.broadcaster.Publish(broadcast.BranchTopic(created.BranchID), ev)
	s.broadcaster.Publish(broadcast.KitchenTopic(created.BranchID), ev)

	prom.IncCounterVec(prom.SystemOrders, prom.MetricOrdersCreated, string(created.Type))

	return created, nil
}

func (s *OrderService) Get(ctx context.Context, id, tenantID int64) (*model.Order, error) {
	return s.orderRepo.GetByID(ctx, id, tenantID)
}

func (s *OrderService) List(ctx context.Context, f model.OrderFilter) ([]*model.Order, int64, error) {
	return s.orderRepo.List(ctx, f)
}

func (s *OrderService) UpdateStatus(ctx context.Context, orderID, tenantID int64, next model.OrderStatus) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID, tenantID)
	if err != nil {
		return nil, err
	}

	if !statemachine.CanTransition(order.Status, next) {
		return nil, statemachine.TransitionError(order.Status, next)
	}

	ok, err := s.orderRepo.UpdateStatusFrom(ctx, orderID, tenantID, order.Status, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q is stale", ErrOrderStatusChanged, order.Status)
	}
	order.Status = next

	s.publishOrderEvent(broadcast.EventOrderUpdated, order)

	if next == model.OrderStatusCompleted {
		prom.IncCounterVec(prom.SystemOrders, prom.MetricOrdersCompleted, string(order.Type))
		// Stock and loyalty are best-effort enrichments; a failure here
		// must not undo the completed status the customer already saw.
		if err := s.completer.Complete(ctx, orderID, tenantID); err != nil {
			logger.Error("completion side effects failed",
				"order_id", orderID,
				"tenant_id", tenantID,
				"error", err)
		}
	}

	return order, nil
}

// Cancel is the one path allowed to move an order to cancelled, and only
// while it is still pending.
func (s *OrderService) Cancel(ctx context.Context, orderID, tenantID int64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID, tenantID)
	if err != nil {
		return nil, err
	}

	if !statemachine.IsCancellable(order.Status) {
		return nil, fmt.Errorf("%w: status is %q", ErrNotCancellable, order.Status)
	}

	ok, err := s.orderRepo.UpdateStatusFrom(ctx, orderID, tenantID, order.Status, model.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q is stale", ErrOrderStatusChanged, order.Status)
	}
	order.Status = model.OrderStatusCancelled

	s.publishOrderEvent(broadcast.EventOrderUpdated, order)

	return order, nil
}

func (s *OrderService) UpdateItemStatus(ctx context.Context, orderID, itemID, tenantID int64, next model.ItemStatus) (*model.OrderItem, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID, tenantID)
	if err != nil {
		return nil, err
	}

	item, err := s.orderRepo.GetItem(ctx, orderID, itemID)
	if err != nil {
		return nil, err
	}

	if !statemachine.CanTransitionItem(item.Status, next) {
		return nil, statemachine.ItemTransitionError(item.Status, next)
	}

	if err := s.orderRepo.UpdateItemStatus(ctx, orderID, itemID, next); err != nil {
		return nil, err
	}
	item.Status = next

	ev := broadcast.NewEvent(broadcast.EventOrderItemStatus, item)
	s.broadcaster.Publish(broadcast.BranchTopic(order.BranchID), ev)
	s.broadcaster.Publish(broadcast.KitchenTopic(order.BranchID), ev)
	if order.TableSessionID != nil {
		s.broadcaster.Publish(broadcast.SessionTopic(*order.TableSessionID), ev)
	}

	return item, nil
}

func (s *OrderService) publishOrderEvent(eventType string, order *model.Order) {
	ev := broadcast.NewEvent(eventType, order)
	s.broadcaster.Publish(broadcast.BranchTopic(order.BranchID), ev)
	s.broadcaster.Publish(broadcast.KitchenTopic(order.BranchID), ev)
	if order.TableSessionID != nil {
		s.broadcaster.Publish(broadcast.SessionTopic(*order.TableSessionID), ev)
	}
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}
