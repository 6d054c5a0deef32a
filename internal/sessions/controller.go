package sessions

import (
	"net/http"
	"time"

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

// GetPlateStatus godoc
// @Summary      Active session of a vehicle
// @Description  Returns the session state and the amount charged if the vehicle left now (or at `at`).
// @Tags         vehicles
// @Produce      json
// @Param        plate      path   string  true   "License plate"
// @Param        garage_id  query  string  false  "Garage id, default garage when omitted"
// @Param        at         query  string  false  "RFC3339 instant"
// @Success      200  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Router       /vehicles/{plate}/status [get]
// @Security     BearerAuth
func (c *Controller) GetPlateStatus(ctx *gin.Context) {
	var garageID *uuid.UUID
	if raw := ctx.Query("garage_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid garage ID", nil, err.Error())
			return
		}
		garageID = &id
	}

	at := time.Now().UTC()
	if raw := ctx.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid time format. Use RFC3339", nil, err.Error())
			return
		}
		at = parsed
	}

	status, err := c.service.PlateStatus(ctx.Request.Context(), garageID, ctx.Param("plate"), at)
	if err != nil {
		response.RespondError(ctx, "Failed to get vehicle status", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Vehicle status retrieved successfully", status, nil)
}
