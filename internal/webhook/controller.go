package webhook

import (
	"context"
	"net/http"

	"garagehub/internal/sessions"
	"garagehub/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Dispatcher applies a garage event; satisfied by sessions.Service
type Dispatcher interface {
	Dispatch(ctx context.Context, ev sessions.Event) (*sessions.Result, error)
}

type Controller struct {
	dispatcher Dispatcher
	validator  *validator.Validate
}

func NewController(dispatcher Dispatcher) *Controller {
	return &Controller{
		dispatcher: dispatcher,
		validator:  NewValidator(),
	}
}

// ReceiveEvent godoc
// @Summary      Ingest a garage event
// @Description  Applies an ENTRY, PARKED or EXIT event to the vehicle's parking session.
// @Tags         webhook
// @Accept       json
// @Produce      json
// @Param        event  body  EventRequest  true  "Garage event"
// @Success      200  {object}  response.StandardApiResponse
// @Failure      400  {object}  response.StandardApiResponse
// @Failure      404  {object}  response.StandardApiResponse
// @Failure      409  {object}  response.StandardApiResponse
// @Failure      503  {object}  response.StandardApiResponse
// @Router       /webhook [post]
func (c *Controller) ReceiveEvent(ctx *gin.Context) {
	var req EventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	res, err := c.dispatcher.Dispatch(ctx.Request.Context(), req.ToEvent())
	if err != nil {
		response.RespondError(ctx, "Event rejected", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Event processed", sessions.ToEventResponse(res), nil)
}
