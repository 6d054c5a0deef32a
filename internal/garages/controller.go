package garages

import (
	"net/http"

	"garagehub/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) GetGarages(ctx *gin.Context) {
	garages, err := c.service.ListGarages(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, "Failed to get garages", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Garages retrieved successfully", garages, nil)
}

// GetDefaultOccupancy godoc
// @Summary      Sector occupancy of the default garage
// @Tags         garages
// @Produce      json
// @Success      200  {object}  response.StandardApiResponse
// @Failure      503  {object}  response.StandardApiResponse
// @Router       /garage/sectors [get]
// @Security     BearerAuth
func (c *Controller) GetDefaultOccupancy(ctx *gin.Context) {
	c.respondOccupancy(ctx, nil)
}

func (c *Controller) GetOccupancy(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid garage ID", nil, err.Error())
		return
	}
	c.respondOccupancy(ctx, &id)
}

func (c *Controller) respondOccupancy(ctx *gin.Context, garageID *uuid.UUID) {
	occupancy, err := c.service.GetOccupancy(ctx.Request.Context(), garageID)
	if err != nil {
		response.RespondError(ctx, "Failed to get sector occupancy", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Sector occupancy retrieved successfully", occupancy, nil)
}
