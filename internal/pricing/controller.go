package pricing

import (
	"net/http"

	"garagehub/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	repo Repository
}

func NewController(repo Repository) *Controller {
	return &Controller{repo: repo}
}

// ListStrategies godoc
// @Summary      List active pricing strategies
// @Tags         pricing
// @Produce      json
// @Param        garage_id  query  string  false  "Garage ID (global strategies are always included)"
// @Success      200  {object}  response.StandardApiResponse
// @Router       /pricing/strategies [get]
// @Security     BearerAuth
func (c *Controller) ListStrategies(ctx *gin.Context) {
	var garageID *uuid.UUID
	if raw := ctx.Query("garage_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid garage ID", nil, err.Error())
			return
		}
		garageID = &id
	}

	strategies, err := c.repo.ListActiveStrategies(ctx.Request.Context(), garageID)
	if err != nil {
		response.RespondError(ctx, "Failed to list pricing strategies", err)
		return
	}

	out := make([]StrategyResponse, 0, len(strategies))
	for _, s := range strategies {
		out = append(out, toStrategyResponse(s))
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Pricing strategies retrieved successfully", out, nil)
}
