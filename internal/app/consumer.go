package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-payroll/internal/allocation"
	"go-payroll/internal/employment"
	"go-payroll/internal/grant"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/messaging/kafka/consumer"
	"go-payroll/internal/payroll"
	"go-payroll/internal/payrollbatch"
	"go-payroll/internal/payrule"
	"go-payroll/internal/shared/connection"

	"go.uber.org/zap"
)

// RunConsumer executes batch payroll runs requested through Kafka.
func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

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

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	allocationRepo := allocation.NewRepository(gormDB)
	batchRepo := payrollbatch.NewRepository(sqlDB)
	employmentRepo := employment.NewRepository(gormDB)
	grantRepo := grant.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	payrollRepo := payroll.NewRepository(gormDB)
	payruleRepo := payrule.NewRepository(gormDB)

	ruleProvider := payrule.NewProvider(payruleRepo)
	engine := payroll.NewEngine(employmentRepo, allocationRepo, grantRepo, payrollRepo)
	cancelFlag := payrollbatch.NewRedisCancelFlag(redisClient)
	batchService := payrollbatch.NewService(
		sqlDB, batchRepo, outboxRepo, engine, employmentRepo, ruleProvider, cancelFlag,
	)

	batchConsumer := consumer.NewBatchRunConsumer(
		kafkaBroker,
		"go-payroll-batch-runner",
		batchService,
		logger,
	)
	defer batchConsumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batchConsumer.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
