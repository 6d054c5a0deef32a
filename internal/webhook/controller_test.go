package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"garagehub/internal/capacity"
	"garagehub/internal/garages"
	"garagehub/internal/pricing"
	"garagehub/internal/sessions"
	"garagehub/internal/shared/database/memstore"
	"garagehub/internal/shared/retry"
	"garagehub/internal/shared/utils/response"
	"garagehub/internal/spots"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()

	store := memstore.New()
	_, err := garages.Bootstrap(context.Background(), store, store, store, garages.DefaultLayout())
	require.NoError(t, err)

	policy := retry.Policy{MaxTries: 3, InitialInterval: time.Millisecond}
	svc := sessions.NewService(sessions.Dependencies{
		Repo:     store,
		Tx:       store,
		Garages:  garages.NewService(store, nil, 0),
		Capacity: capacity.NewManager(store, policy),
		Spots:    spots.NewService(store, decimal.RequireFromString("0.000001"), policy),
		Pricing:  pricing.NewEngine(store, 30),
		Policy:   policy,
	})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupWebhookRoutes(r.Group("/api/v1"), NewController(svc))
	return r
}

func post(t *testing.T, r *gin.Engine, body string) (int, response.StandardApiResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response.StandardApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func errorCode(resp response.StandardApiResponse) string {
	detail, _ := resp.Errors.(map[string]interface{})
	code, _ := detail["code"].(string)
	return code
}

func TestWebhookLifecycle(t *testing.T) {
	r := newEngine(t)

	status, resp := post(t, r, `{"event_type":"ENTRY","license_plate":"ZUL0001","entry_time":"2025-01-01T12:00:00.000Z","sector":"A"}`)
	require.Equal(t, http.StatusOK, status)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "ACTIVE_UNPARKED", data["state"])
	assert.Equal(t, "9.00", data["price"])

	status, resp = post(t, r, `{"event_type":"PARKED","license_plate":"ZUL0001","lat":-23.561684,"lng":"-46.655981"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ACTIVE_PARKED", resp.Data.(map[string]interface{})["state"])

	status, resp = post(t, r, `{"event_type":"EXIT","license_plate":"ZUL0001","exit_time":"2025-01-01T14:00:00Z"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "18.00", resp.Data.(map[string]interface{})["price"])

	status, resp = post(t, r, `{"event_type":"EXIT","license_plate":"ZUL0001","exit_time":"2025-01-01T14:00:00Z"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NO_ACTIVE_SESSION", errorCode(resp))
}

func TestWebhookConflictCodesStayDistinct(t *testing.T) {
	r := newEngine(t)

	entry := `{"event_type":"ENTRY","license_plate":"ABC1D23","entry_time":"2025-01-01T12:00:00Z"}`
	status, _ := post(t, r, entry)
	require.Equal(t, http.StatusOK, status)

	status, resp := post(t, r, entry)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "VEHICLE_ALREADY_ACTIVE", errorCode(resp))

	status, resp = post(t, r, `{"event_type":"ENTRY","license_plate":"XYZ9876","entry_time":"2025-01-01T12:00:00Z","sector":"Q"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "SECTOR_NOT_FOUND", errorCode(resp))
}

func TestWebhookRejectsInvalidPayloads(t *testing.T) {
	r := newEngine(t)

	cases := map[string]string{
		"malformed json":     `{"event_type":`,
		"unknown type":       `{"event_type":"TOWED","license_plate":"ABC1234"}`,
		"bad plate":          `{"event_type":"EXIT","license_plate":"12ABCDE","exit_time":"2025-01-01T12:00:00Z"}`,
		"entry without time": `{"event_type":"ENTRY","license_plate":"ABC1234"}`,
		"lowercase sector":   `{"event_type":"ENTRY","license_plate":"ABC1234","entry_time":"2025-01-01T12:00:00Z","sector":"a"}`,
		"parked without lng": `{"event_type":"PARKED","license_plate":"ABC1234","lat":10}`,
		"lat out of range":   `{"event_type":"PARKED","license_plate":"ABC1234","lat":90.0000001,"lng":0}`,
		"exit without time":  `{"event_type":"EXIT","license_plate":"ABC1234"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			status, resp := post(t, r, body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "error", resp.Status)
		})
	}
}
