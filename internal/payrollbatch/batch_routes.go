package payrollbatch

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rdb *redis.Client) {
	batches := r.Group("/payroll-batches")
	{
		batches.POST("",
			middleware.RateLimitByIP(0.5, 2),
			middleware.Idempotency(rdb),
			handler.Create,
		)
		batches.GET("/:id", handler.GetStatus)
		batches.GET("/:id/errors", handler.ListErrors)
		batches.GET("/:id/errors/csv", handler.DownloadErrorsCSV)
		batches.POST("/:id/cancel", handler.Cancel)
	}
}
