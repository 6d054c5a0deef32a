package revenue

import (
	"garagehub/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRevenueRoutes(rg *gin.RouterGroup, controller *Controller) {
	revenue := rg.Group("/revenue")
	revenue.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		revenue.GET("", controller.GetRevenue) // GET /api/v1/revenue
	}
}
