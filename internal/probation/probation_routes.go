package probation

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	probations := r.Group("/probations")
	{
		probations.POST("/extend", handler.Extend)
	}
}
