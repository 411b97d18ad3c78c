package statemachine

import (
	"errors"
	"fmt"

	"github.com/comanda-pos/comanda/internal/model"
)

var (
	ErrInvalidTransition     = errors.New("invalid order transition")
	ErrInvalidItemTransition = errors.New("invalid item transition")
)

// orderTransitions maps each order status to the set of statuses it may
// move to. completed and cancelled are terminal.
var orderTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:   {model.OrderStatusConfirmed, model.OrderStatusCancelled},
	model.OrderStatusConfirmed: {model.OrderStatusPreparing},
	model.OrderStatusPreparing: {model.OrderStatusReady},
	model.OrderStatusReady:     {model.OrderStatusServed},
	model.OrderStatusServed:    {model.OrderStatusCompleted},
	model.OrderStatusCompleted: {},
	model.OrderStatusCancelled: {},
}

var itemTransitions = map[model.ItemStatus][]model.ItemStatus{
	model.ItemStatusPending:   {model.ItemStatusPreparing, model.ItemStatusCancelled},
	model.ItemStatusPreparing: {model.ItemStatusReady, model.ItemStatusCancelled},
	model.ItemStatusReady:     {model.ItemStatusServed},
	model.ItemStatusServed:    {},
	model.ItemStatusCancelled: {},
}

// CanTransition reports whether an order may move from cur to next.
func CanTransition(cur, next model.OrderStatus) bool {
	for _, s := range orderTransitions[cur] {
		if s == next {
			return true
		}
	}
	return false
}

// CanTransitionItem reports whether an order item may move from cur to next.
func CanTransitionItem(cur, next model.ItemStatus) bool {
	for _, s := range itemTransitions[cur] {
		if s == next {
			return true
		}
	}
	return false
}

// IsCancellable reports whether an order in the given status may still be
// cancelled. Cancellation is only open while the kitchen has not picked
// the order up, i.e. while it is pending.
func IsCancellable(cur model.OrderStatus) bool {
	return cur == model.OrderStatusPending
}

// IsTerminal reports whether the status has no outgoing transitions.
func IsTerminal(cur model.OrderStatus) bool {
	return len(orderTransitions[cur]) == 0
}

// TransitionError builds the user-facing rejection for an illegal order
// transition, naming both states.
func TransitionError(cur, next model.OrderStatus) error {
	return fmt.Errorf("%w: cannot move order from %q to %q", ErrInvalidTransition, cur, next)
}

// ItemTransitionError is the item-graph counterpart of TransitionError.
func ItemTransitionError(cur, next model.ItemStatus) error {
	return fmt.Errorf("%w: cannot move item from %q to %q", ErrInvalidItemTransition, cur, next)
}
