package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/comanda-pos/comanda/internal/config"
	gateway "github.com/comanda-pos/comanda/internal/gateways"
	"github.com/comanda-pos/comanda/internal/model"
	"github.com/comanda-pos/comanda/internal/queue"
	"github.com/comanda-pos/comanda/internal/repository"
	"github.com/comanda-pos/comanda/internal/services"
	"github.com/comanda-pos/comanda/pkg/logger"
	"github.com/comanda-pos/comanda/pkg/pg"
	"github.com/comanda-pos/comanda/pkg/prom"
	"github.com/comanda-pos/comanda/pkg/redis"
	"github.com/comanda-pos/comanda/pkg/worker"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// completionTask carries one decoded job through the worker pool. The
// queue handler waits on done so the stream entry is only acked after
// the side effects committed.
type completionTask struct {
	ctx  context.Context
	job  model.CompletionJob
	done chan error
}

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	catalog, err := gateway.NewClient(&gateway.Config{
		BaseURL:         config.Get().CatalogBaseUrl,
		Timeout:         config.Get().CatalogTimeout,
		MaxRetries:      2,
		RetryDelay:      time.Millisecond * 100,
		MaxConns:        100,
		ReadBufferSize:  1024 * 4,
		WriteBufferSize: 1024 * 4,
	})
	if err != nil {
		logger.Error("failed to create catalog client", "error", err)
		return
	}

	q, err := queue.NewQueue(redisAdap, queue.QueueConfig{
		Name:              config.Get().QueueName,
		ConsumerGroup:     config.Get().QueueConsumerGroup,
		ConsumerName:      config.Get().QueueConsumerName,
		MaxRetries:        config.Get().QueueMaxRetries,
		VisibilityTimeout: config.Get().QueueVisibilityTimeout,
		PollInterval:      config.Get().QueuePollInterval,
		BatchSize:         config.Get().QueueBatchSize,
		MaxLen:            config.Get().QueueMaxLen,
		EnableDLQ:         config.Get().QueueEnableDLQ,
	})
	if err != nil {
		logger.Error("failed creating queue", "error", err)
		return
	}

	orderRepo := repository.NewOrderRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	loyaltyRepo := repository.NewLoyaltyRepository(db)

	loyaltyService := services.NewLoyaltyService(loyaltyRepo)
	completionService := services.NewCompletionService(orderRepo, inventoryRepo, catalog, loyaltyService, redisAdap)

	var hostname string
	hostname, err = os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	err = prom.Create(hostname, config.Get().AppEnv, config.Get().PromNamespace)
	if err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}

	go func() {
		prom.ListenAndServer(":9100", "/metrics")
	}()

	pool := worker.NewWorkerManager(config.Get().WorkerQueueSize, config.Get().WorkerPoolSize, nil)
	pool.SetWorker(func(workerIndex int, job interface{}) {
		task := job.(*completionTask)
		task.done <- completionService.Complete(task.ctx, task.job.OrderID, task.job.TenantID)
	})

	go func() {
		err := pool.Start()
		logger.Info("worker pool stopped", "reason", err)
	}()

	err = q.Consume(func(ctx context.Context, msg *queue.Message) error {
		start := time.Now()

		var job model.CompletionJob
		if err := json.Unmarshal(msg.Data, &job); err != nil {
			// Undecodable payloads never become decodable; ack and move on.
			logger.Error("dropping malformed completion job", "message_id", msg.ID, "error", err)
			return nil
		}

		task := &completionTask{ctx: ctx, job: job, done: make(chan error, 1)}
		pool.Enqueue(task)
		err := <-task.done

		prom.AddCompletionJobDuration(time.Since(start).Seconds())

		if err != nil {
			logger.Error("completion job failed",
				"order_id", job.OrderID,
				"tenant_id", job.TenantID,
				"attempts", msg.Attempts,
				"error", err)
			return err
		}

		logger.Info("completion job processed",
			"order_id", job.OrderID,
			"tenant_id", job.TenantID,
			"duration", time.Since(start))
		return nil
	})
	if err != nil {
		logger.Error("failed to start consuming", "error", err)
		return
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case <-c:
		if err := q.Stop(30 * time.Second); err != nil {
			logger.Error("queue did not stop cleanly", "error", err)
		}
		pool.Exit()
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
