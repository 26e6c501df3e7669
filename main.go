package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/provisionhq/provision-retrier/pkg/audit"
	"github.com/provisionhq/provision-retrier/pkg/config"
	"github.com/provisionhq/provision-retrier/pkg/executor"
	"github.com/provisionhq/provision-retrier/pkg/logger"
	"github.com/provisionhq/provision-retrier/pkg/retrier"
	"github.com/provisionhq/provision-retrier/pkg/store"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	stdLogger := logger.NewStdLogger(cfg.LoggerConfig.Coloring, cfg.LoggerConfig.Level)

	// Set up context with cancellation on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Job store and audit trail share one Redis connection pool
	jobStore := store.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.QueueKey)
	if err := jobStore.Ping(ctx); err != nil {
		stdLogger.Error("Redis at %s not reachable yet: %v", cfg.Redis.Addr, err)
	}
	defer jobStore.Close()

	sink := audit.NewRedisStreamSink(jobStore.Client(), cfg.AuditStream)
	exec := executor.NewHTTPExecutor(cfg.ProvisionEndpoint)

	service := retrier.NewService(cfg, jobStore, sink, exec, stdLogger)

	// Set up signal handling for graceful shutdown
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		stdLogger.Notice("Received termination signal, shutting down gracefully...")
		cancel()
	}()

	// Start the service
	stdLogger.Info("Starting the provision retrier...")
	service.Start(ctx)
}
