package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"holidaze/cmd/consumers/jobs"
	"holidaze/internal/config"
	"holidaze/internal/consumers"
	"holidaze/internal/logger"
	"holidaze/internal/metrics"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	log := logger.WithFields("service", "holidaze-consumers")
	log.Info("Starting consumers service...")

	// Override NATS client ID for consumers
	cfg.NATS.ClientID = "holidaze-consumers"

	consumerService, err := consumers.NewConsumerService(cfg, metrics.New())
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	// Start consuming messages
	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reindexJob := jobs.NewDirectoryReindexJob(consumerService, cfg.IndexRefresh)
	reindexJob.Start(ctx)

	var purgeJob *jobs.SessionPurgeJob
	if sessions := consumerService.Sessions(); sessions != nil {
		purgeJob = jobs.NewSessionPurgeJob(sessions, cfg.SessionPurge)
		purgeJob.Start(ctx)
	}

	log.Info("Consumers service started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down consumers service...")

	reindexJob.Stop()
	if purgeJob != nil {
		purgeJob.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := consumerService.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during shutdown", "error", err)
	}

	log.Info("Consumers service stopped")
}
