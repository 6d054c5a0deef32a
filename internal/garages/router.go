package garages

import (
	"garagehub/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupGarageRoutes(rg *gin.RouterGroup, controller *Controller) {
	garages := rg.Group("/garages")
	garages.Use(middleware.JWTAuth(), middleware.RequireRoles(middleware.RoleAdmin, middleware.RoleOperator))
	{
		garages.GET("", controller.GetGarages)               // GET /api/v1/garages
		garages.GET("/:id/sectors", controller.GetOccupancy) // GET /api/v1/garages/:id/sectors
	}

	garage := rg.Group("/garage")
	garage.Use(middleware.JWTAuth(), middleware.RequireRoles(middleware.RoleAdmin, middleware.RoleOperator))
	{
		garage.GET("/sectors", controller.GetDefaultOccupancy) // GET /api/v1/garage/sectors
	}
}
