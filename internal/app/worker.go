package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-payroll/internal/allocation"
	"go-payroll/internal/employment"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/messaging/kafka/producer"
	"go-payroll/internal/probation"
	"go-payroll/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker runs the outbox publisher and the daily probation sweep.
func RunWorker() error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(kafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	allocationRepo := allocation.NewRepository(gormDB)
	employmentRepo := employment.NewRepository(gormDB)
	probationRepo := probation.NewRepository(gormDB)
	probationService := probation.NewService(
		gormDB, probationRepo, allocationRepo, employmentRepo, outboxRepo,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		3*time.Second,
	)

	go runProbationSweep(ctx, probationService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}

// runProbationSweep runs once at startup, then every day. Re-running on
// the same date is harmless: transitioned employments no longer match.
func runProbationSweep(ctx context.Context, service probation.Service, logger *zap.Logger) {
	log := logger.Named("probation.sweep")

	sweep := func() {
		today := time.Now().UTC().Truncate(24 * time.Hour)
		if _, err := service.Sweep(ctx, today); err != nil {
			log.Error("probation sweep failed", zap.Error(err))
		}
	}

	sweep()

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("probation sweep stopped")
			return
		case <-ticker.C:
			sweep()
		}
	}
}
