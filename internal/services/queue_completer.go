package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/comanda-pos/comanda/internal/model"
	"github.com/comanda-pos/comanda/internal/queue"
	"github.com/comanda-pos/comanda/pkg/logger"
)

// CompletionPublisher is the queue surface QueueCompleter writes to.
type CompletionPublisher interface {
	PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error)
}

// QueueCompleter defers completion side effects to the worker: instead of
// running them inline it enqueues a job, so a transient failure in stock
// or loyalty is retried by the queue rather than lost.
type QueueCompleter struct {
	publisher CompletionPublisher
}

func NewQueueCompleter(publisher CompletionPublisher) *QueueCompleter {
	return &QueueCompleter{
		publisher: publisher,
	}
}

var _ Completer = (*QueueCompleter)(nil)
var _ CompletionPublisher = (*queue.Queue)(nil)

func (c *QueueCompleter) Complete(ctx context.Context, orderID, tenantID int64) error {
	job := model.CompletionJob{
		OrderID:  orderID,
		TenantID: tenantID,
	}

	id, err := c.publisher.PublishJSON(ctx, job, map[string]string{
		"order_id":  strconv.FormatInt(orderID, 10),
		"tenant_id": strconv.FormatInt(tenantID, 10),
	})
	if err != nil {
		return fmt.Errorf("enqueue completion job: %w", err)
	}

	logger.Info("completion job enqueued",
		"order_id", orderID,
		"message_id", id)
	return nil
}
