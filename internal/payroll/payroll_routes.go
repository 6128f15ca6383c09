package payroll

import (
	"go-payroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	payrolls := r.Group("/payrolls")
	{
		payrolls.GET("",
			middleware.RateLimitByIP(2, 5),
			handler.GetByPeriod,
		)
		payrolls.POST("/preview",
			middleware.RateLimitByIP(0.5, 2),
			handler.Preview,
		)
		payrolls.POST("/calculate",
			middleware.RateLimitByIP(0.5, 2),
			handler.Calculate,
		)
	}
}
