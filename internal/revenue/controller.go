package revenue

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

// GetRevenue godoc
// @Summary      Revenue of one day
// @Tags         revenue
// @Produce      json
// @Param        date       query  string  true   "Day, YYYY-MM-DD"
// @Param        sector     query  string  false  "Sector code"
// @Param        garage_id  query  string  false  "Garage id, default garage when omitted"
// @Success      200  {object}  response.StandardApiResponse
// @Failure      400  {object}  response.StandardApiResponse
// @Router       /revenue [get]
// @Security     BearerAuth
func (c *Controller) GetRevenue(ctx *gin.Context) {
	rawDate := ctx.Query("date")
	if rawDate == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "date is required", nil, nil)
		return
	}
	date, err := time.Parse(DateLayout, rawDate)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD", nil, err.Error())
		return
	}

	var garageID *uuid.UUID
	if raw := ctx.Query("garage_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid garage ID", nil, err.Error())
			return
		}
		garageID = &id
	}

	revenue, err := c.service.GetRevenue(ctx.Request.Context(), garageID, date, ctx.Query("sector"))
	if err != nil {
		response.RespondError(ctx, "Failed to get revenue", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Revenue retrieved successfully", revenue, nil)
}
