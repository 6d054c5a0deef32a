package sessions

import (
	"garagehub/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupSessionRoutes(rg *gin.RouterGroup, controller *Controller) {
	vehicles := rg.Group("/vehicles")
	vehicles.Use(middleware.JWTAuth(), middleware.RequireRoles(middleware.RoleAdmin, middleware.RoleOperator))
	{
		vehicles.GET("/:plate/status", controller.GetPlateStatus) // GET /api/v1/vehicles/:plate/status
	}
}
