package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/comanda-pos/comanda/internal/model"
	"github.com/comanda-pos/comanda/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Use unique connection name per test to avoid global adapter caching issues
	connName := t.Name() + "-" + mr.Addr()
	adapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func completionQueueConfig(name string) QueueConfig {
	return QueueConfig{
		Name:              name,
		ConsumerGroup:     "completion-workers",
		ConsumerName:      "worker-test",
		MaxRetries:        3,
		VisibilityTimeout: 5 * time.Second,
		PollInterval:      100 * time.Millisecond,
		BatchSize:         10,
		MaxLen:            1000,
		EnableDLQ:         true,
	}
}

func TestQueue_PublishAndConsumeCompletionJob(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	q, err := NewQueue(adapter, completionQueueConfig("orders:completion"))
	require.NoError(t, err)

	ctx := context.Background()
	job := model.CompletionJob{OrderID: 42, TenantID: 1}

	_, err = q.PublishJSON(ctx, job, map[string]string{"order_id": "42"})
	require.NoError(t, err)

	received := make(chan model.CompletionJob, 1)
	handler := func(ctx context.Context, msg *Message) error {
		var got model.CompletionJob
		if err := json.Unmarshal(msg.Data, &got); err != nil {
			return err
		}
		assert.Equal(t, "42", msg.Metadata["order_id"])
		received <- got
		return nil
	}

	require.NoError(t, q.Consume(handler))

	select {
	case got := <-received:
		assert.Equal(t, int64(42), got.OrderID)
		assert.Equal(t, int64(1), got.TenantID)
	case <-time.After(2 * time.Second):
		t.Fatal("completion job not received")
	}

	q.Stop(time.Second)
}

func TestQueue_FailedJobStaysPending(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	q, err := NewQueue(adapter, completionQueueConfig("orders:completion:retry"))
	require.NoError(t, err)
	defer q.Stop(time.Second)

	ctx := context.Background()
	_, err = q.PublishJSON(ctx, model.CompletionJob{OrderID: 7, TenantID: 1}, nil)
	require.NoError(t, err)

	attempts := 0
	handler := func(ctx context.Context, msg *Message) error {
		attempts++
		return assert.AnError
	}
	require.NoError(t, q.Consume(handler))

	time.Sleep(500 * time.Millisecond)
	assert.GreaterOrEqual(t, attempts, 1)

	// The failed delivery was never acked, so it stays pending for a
	// later claim rather than being lost.
	stats, err := q.GetStats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.PendingMessages, int64(1))
}

func TestQueue_GetStats(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	q, err := NewQueue(adapter, completionQueueConfig("orders:completion:stats"))
	require.NoError(t, err)
	defer q.Stop(time.Second)

	ctx := context.Background()
	for i := int64(1); i <= 5; i++ {
		_, err := q.PublishJSON(ctx, model.CompletionJob{OrderID: i, TenantID: 1}, nil)
		require.NoError(t, err)
	}

	stats, err := q.GetStats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.TotalMessages, int64(5))
}

func TestMessage_AckNack(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	q, err := NewQueue(adapter, completionQueueConfig("orders:completion:ack"))
	require.NoError(t, err)
	defer q.Stop(time.Second)

	t.Run("ack marks message as processed", func(t *testing.T) {
		msgID, err := q.Publish(context.Background(), []byte(`{"order_id":1}`), nil)
		require.NoError(t, err)

		msg := &Message{ID: msgID, queue: q}
		require.NoError(t, msg.Ack())
		assert.Error(t, msg.Ack())
	})

	t.Run("nack leaves message for retry", func(t *testing.T) {
		msg := &Message{ID: "0-1", queue: q}
		require.NoError(t, msg.Nack())
		assert.Error(t, msg.Nack())
		assert.Error(t, msg.Ack())
	})
}

func TestQueue_Stop(t *testing.T) {
	mr, adapter := setupTestRedis(t)
	defer mr.Close()

	q, err := NewQueue(adapter, completionQueueConfig("orders:completion:stop"))
	require.NoError(t, err)

	handler := func(ctx context.Context, msg *Message) error {
		time.Sleep(100 * time.Millisecond)
		return nil
	}
	require.NoError(t, q.Consume(handler))

	assert.NoError(t, q.Stop(2*time.Second))
}
