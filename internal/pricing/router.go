package pricing

import (
	"garagehub/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupPricingRoutes(rg *gin.RouterGroup, controller *Controller) {
	pricing := rg.Group("/pricing")
	pricing.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		pricing.GET("/strategies", controller.ListStrategies) // GET /api/v1/pricing/strategies
	}
}
