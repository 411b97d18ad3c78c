package statemachine

import (
	"testing"

	"github.com/comanda-pos/comanda/internal/model"
	"github.com/stretchr/testify/assert"
)

var allOrderStatuses = []model.OrderStatus{
	model.OrderStatusPending,
	model.OrderStatusConfirmed,
	model.OrderStatusPreparing,
	model.OrderStatusReady,
	model.OrderStatusServed,
	model.OrderStatusCompleted,
	model.OrderStatusCancelled,
}

var allItemStatuses = []model.ItemStatus{
	model.ItemStatusPending,
	model.ItemStatusPreparing,
	model.ItemStatusReady,
	model.ItemStatusServed,
	model.ItemStatusCancelled,
}

func TestCanTransition_FullMatrix(t *testing.T) {
	allowed := map[model.OrderStatus]map[model.OrderStatus]bool{
		model.OrderStatusPending:   {model.OrderStatusConfirmed: true, model.OrderStatusCancelled: true},
		model.OrderStatusConfirmed: {model.OrderStatusPreparing: true},
		model.OrderStatusPreparing: {model.OrderStatusReady: true},
		model.OrderStatusReady:     {model.OrderStatusServed: true},
		model.OrderStatusServed:    {model.OrderStatusCompleted: true},
		model.OrderStatusCompleted: {},
		model.OrderStatusCancelled: {},
	}

	for _, cur := range allOrderStatuses {
		for _, next := range allOrderStatuses {
			got := CanTransition(cur, next)
			want := allowed[cur][next]
			assert.Equal(t, want, got, "transition %s -> %s", cur, next)
		}
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	assert.False(t, CanTransition("bogus", model.OrderStatusPending))
	assert.False(t, CanTransition(model.OrderStatusPending, "bogus"))
}

func TestCanTransitionItem_FullMatrix(t *testing.T) {
	allowed := map[model.ItemStatus]map[model.ItemStatus]bool{
		model.ItemStatusPending:   {model.ItemStatusPreparing: true, model.ItemStatusCancelled: true},
		model.ItemStatusPreparing: {model.ItemStatusReady: true, model.ItemStatusCancelled: true},
		model.ItemStatusReady:     {model.ItemStatusServed: true},
		model.ItemStatusServed:    {},
		model.ItemStatusCancelled: {},
	}

	for _, cur := range allItemStatuses {
		for _, next := range allItemStatuses {
			got := CanTransitionItem(cur, next)
			want := allowed[cur][next]
			assert.Equal(t, want, got, "transition %s -> %s", cur, next)
		}
	}
}

func TestIsCancellable(t *testing.T) {
	assert.True(t, IsCancellable(model.OrderStatusPending))
	for _, s := range allOrderStatuses {
		if s == model.OrderStatusPending {
			continue
		}
		assert.False(t, IsCancellable(s), "status %s", s)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(model.OrderStatusCompleted))
	assert.True(t, IsTerminal(model.OrderStatusCancelled))
	assert.False(t, IsTerminal(model.OrderStatusPending))
	assert.False(t, IsTerminal(model.OrderStatusServed))
}

func TestTransitionError_NamesBothStates(t *testing.T) {
	err := TransitionError(model.OrderStatusCompleted, model.OrderStatusPending)
	assert.Contains(t, err.Error(), "completed")
	assert.Contains(t, err.Error(), "pending")

	err = ItemTransitionError(model.ItemStatusServed, model.ItemStatusPending)
	assert.Contains(t, err.Error(), "served")
	assert.Contains(t, err.Error(), "pending")
}
