package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/comanda-pos/comanda/internal/broadcast"
	"github.com/comanda-pos/comanda/internal/config"
	gateway "github.com/comanda-pos/comanda/internal/gateways"
	"github.com/comanda-pos/comanda/internal/handlers"
	"github.com/comanda-pos/comanda/internal/queue"
	"github.com/comanda-pos/comanda/internal/repository"
	"github.com/comanda-pos/comanda/internal/services"
	xhttp "github.com/comanda-pos/comanda/pkg/http"
	"github.com/comanda-pos/comanda/pkg/logger"
	"github.com/comanda-pos/comanda/pkg/pg"
	"github.com/comanda-pos/comanda/pkg/prom"
	"github.com/comanda-pos/comanda/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport (tcp for now)
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

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

	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	loyaltyRepo := repository.NewLoyaltyRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)

	broadcaster := broadcast.New()

	// Completion side effects either run inline on the status transition or
	// get handed to the worker binary through the stream.
	loyaltyService := services.NewLoyaltyService(loyaltyRepo)
	var completer services.Completer
	if config.Get().CompletionQueueEnabled {
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
			logger.Error("failed creating completion queue", "error", err)
			return
		}
		completer = services.NewQueueCompleter(q)
	} else {
		completer = services.NewCompletionService(orderRepo, inventoryRepo, catalog, loyaltyService, redisAdap)
	}

	// services
	orderService := services.NewOrderService(orderRepo, catalog, broadcaster, completer)
	paymentService := services.NewPaymentService(paymentRepo, orderRepo)
	sessionService := services.NewSessionService(sessionRepo, orderRepo)

	// v1 handlers
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	loyaltyHandler := handlers.NewLoyaltyHandler(loyaltyService)
	eventsHandler := handlers.NewEventsHandler(broadcaster)
	healthHandler := handlers.NewHealthHandler()

	g := s.Router.Group("/api/v1")
	handlers.RegisterOrderRoutes(g, orderHandler)
	handlers.RegisterPaymentRoutes(g, paymentHandler)
	handlers.RegisterSessionRoutes(g, sessionHandler)
	handlers.RegisterLoyaltyRoutes(g, loyaltyHandler)
	handlers.RegisterEventsRoutes(g, eventsHandler)
	handlers.RegisterHealthRoutes(g, healthHandler)

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

	if config.Get().AppDebugMetricsAddr != "" {
		go func() {
			prom.ListenAndServer(config.Get().AppDebugMetricsAddr, config.Get().AppDebugMetricsURI)
		}()
	}

	// Create new server
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	select {
	case <-c:
		s.Shutdown()
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
