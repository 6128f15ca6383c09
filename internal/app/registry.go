package app

import (
	"database/sql"

	"go-payroll/internal/allocation"
	"go-payroll/internal/employment"
	"go-payroll/internal/grant"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/middleware"
	"go-payroll/internal/payroll"
	"go-payroll/internal/payrollbatch"
	"go-payroll/internal/payrule"
	"go-payroll/internal/probation"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()

	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(logger))

	// --- Repositories ---
	allocationRepo := allocation.NewRepository(gormDB)
	batchRepo := payrollbatch.NewRepository(db)
	employmentRepo := employment.NewRepository(gormDB)
	grantRepo := grant.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	payrollRepo := payroll.NewRepository(gormDB)
	payruleRepo := payrule.NewRepository(gormDB)
	probationRepo := probation.NewRepository(gormDB)

	// --- Services ---
	ruleProvider := payrule.NewProvider(payruleRepo)
	engine := payroll.NewEngine(employmentRepo, allocationRepo, grantRepo, payrollRepo)
	payrollService := payroll.NewService(engine, employmentRepo, ruleProvider)
	cancelFlag := payrollbatch.NewRedisCancelFlag(rdb)
	batchService := payrollbatch.NewService(
		db, batchRepo, outboxRepo, engine, employmentRepo, ruleProvider, cancelFlag,
	)
	probationService := probation.NewService(
		gormDB, probationRepo, allocationRepo, employmentRepo, outboxRepo,
	)

	// --- Handlers ---
	payrollHandler := payroll.NewHandler(payrollService)
	batchHandler := payrollbatch.NewHandler(batchService, rdb)
	probationHandler := probation.NewHandler(probationService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		payroll.RegisterRoutes(api, payrollHandler)
		payrollbatch.RegisterRoutes(api, batchHandler, rdb)
		probation.RegisterRoutes(api, probationHandler)
	}

	return nil
}
