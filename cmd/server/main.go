package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sales-flow/config"
	"sales-flow/internal/api"
	"sales-flow/internal/auth"
	"sales-flow/internal/broker"
	"sales-flow/internal/models"
	"sales-flow/internal/redisclient"
	"sales-flow/internal/service"
	"sales-flow/internal/store"
	"sales-flow/internal/util"
	"sales-flow/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting sales flow service",
		zap.String("env", cfg.Server.Env),
		zap.String("store_backend", cfg.Store.Backend))

	if cfg.Observ.JaegerEndpoint != "" {
		tp, err := util.InitTracer(cfg.Observ.JaegerEndpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				logger.Error("Error shutting down tracer", zap.Error(err))
			}
		}()
	}

	persister, err := openPersister(cfg)
	if err != nil {
		logger.Fatal("Failed to open state backend", zap.Error(err))
	}

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)

	ctx := context.Background()
	st, err := store.Open(ctx, persister, cfg.Store.StateKey, func() (models.State, error) {
		return store.Seed(hasher, time.Now().UTC())
	})
	if err != nil {
		logger.Fatal("Failed to open state", zap.Error(err))
	}
	defer st.Close()

	var publisher service.EventPublisher = broker.NopPublisher{}
	var auditWorker *worker.AuditWorker
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	if cfg.Kafka.Enabled() {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
		defer producer.Close()
		publisher = broker.NewEventPublisher(producer)
		logger.Info("Kafka producer initialized", zap.Strings("brokers", cfg.Kafka.Brokers))

		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
		auditWorker = worker.NewAuditWorker(consumer)
		go func() {
			if err := auditWorker.Start(workerCtx); err != nil && err != context.Canceled {
				logger.Error("Audit worker error", zap.Error(err))
			}
		}()
	} else {
		logger.Info("KAFKA_BROKERS not set, domain events disabled")
	}

	userService := service.NewUserService(st, hasher)
	orderService := service.NewOrderService(st, publisher)
	notificationService := service.NewNotificationService(st)
	catalogService := service.NewCatalogService(st, publisher)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(
		userService,
		orderService,
		notificationService,
		catalogService,
		rate.NewLimiter(rate.Limit(cfg.Auth.LoginRatePerSecond), cfg.Auth.LoginBurst),
	)
	if p, ok := persister.(pinger); ok {
		handler.SetReadinessCheck(p.Ping)
	}
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if auditWorker != nil {
		if err := auditWorker.Stop(); err != nil {
			logger.Error("Error stopping audit worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}

// openPersister connects the configured state backend
func openPersister(cfg *config.Config) (store.Persister, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		return store.NewSQLPersister("sqlite", cfg.Store.SQLitePath)
	case "postgres":
		return store.NewSQLPersister("postgres", cfg.Store.DatabaseURL)
	case "redis":
		return redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	case "memory":
		return store.NewMemoryPersister(), nil
	}
	return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
}
