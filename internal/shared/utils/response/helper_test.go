package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"garagehub/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		apperror.ErrSectorFull:           http.StatusConflict,
		apperror.ErrSpotAlreadyOccupied:  http.StatusConflict,
		apperror.ErrVehicleAlreadyActive: http.StatusConflict,
		apperror.ErrNoActiveSession:      http.StatusNotFound,
		apperror.ErrGarageNotFound:       http.StatusNotFound,
		apperror.ErrNoDefaultGarage:      http.StatusServiceUnavailable,
		apperror.ErrTransientConflict:    http.StatusServiceUnavailable,
		apperror.ErrInvalidTimeRange:     http.StatusUnprocessableEntity,
		apperror.ErrNoPricingStrategy:    http.StatusUnprocessableEntity,
		apperror.ErrInvalidEvent:         http.StatusBadRequest,
		errors.New("boom"):               http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(err), err.Error())
	}
}

func TestRespondErrorKeepsCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/webhook", nil)

	RespondError(c, "Event rejected", apperror.Wrap(apperror.ErrTransientConflict, "sector A"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	var body struct {
		Status string      `json:"status"`
		Errors ErrorDetail `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "TRANSIENT_CONFLICT", body.Errors.Code)
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/revenue", nil)

	RespondError(c, "Failed", errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}
