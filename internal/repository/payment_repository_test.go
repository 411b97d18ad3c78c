package repository

import (
	"context"
	"testing"

	"github.com/comanda-pos/comanda/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentRepository_Create(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.Payment{
		OrderID:   1,
		Method:    model.PaymentMethodCash,
		Amount:    5000,
		Tip:       500,
		Status:    model.PaymentStatusCompleted,
		Reference: "abc-123",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotZero(t, created.CreatedAt)
	assert.Equal(t, int64(5000), created.Amount)
}

func TestPaymentRepository_SumCompletedByOrder(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	t.Run("no payments yet", func(t *testing.T) {
		total, err := repo.SumCompletedByOrder(ctx, 42)
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	for _, amount := range []int64{3000, 2500} {
		_, err := repo.Create(ctx, &model.Payment{
			OrderID: 42,
			Method:  model.PaymentMethodCard,
			Amount:  amount,
			Status:  model.PaymentStatusCompleted,
		})
		require.NoError(t, err)
	}
	// Payment on another order must not count.
	_, err := repo.Create(ctx, &model.Payment{
		OrderID: 43,
		Method:  model.PaymentMethodCash,
		Amount:  9999,
		Status:  model.PaymentStatusCompleted,
	})
	require.NoError(t, err)

	t.Run("sums only the order's completed payments", func(t *testing.T) {
		total, err := repo.SumCompletedByOrder(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, int64(5500), total)
	})
}

func TestPaymentRepository_ListByOrder(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, &model.Payment{
			OrderID: 7,
			Method:  model.PaymentMethodCash,
			Amount:  1000,
			Status:  model.PaymentStatusCompleted,
		})
		require.NoError(t, err)
	}

	payments, err := repo.ListByOrder(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, payments, 3)
}
