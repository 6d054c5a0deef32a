package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"garagehub/internal/garages"
	"garagehub/internal/notifications"
	"garagehub/internal/shared/config"
	"garagehub/internal/shared/database"
	"garagehub/internal/shared/database/memstore"
	"garagehub/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Load()
	cfg.Database.Driver = "memory"

	store := memstore.New()
	_, err := garages.Bootstrap(context.Background(), store, store, store, garages.DefaultLayout())
	require.NoError(t, err)

	router := NewRouter(cfg, &database.DB{}, MemoryStores(store), notifications.LogPublisher{}, metrics.NewRecorder(prometheus.NewRegistry()))
	engine := gin.New()
	router.SetupRoutes(engine)
	return engine
}

func TestHealthRoutes(t *testing.T) {
	engine := newTestEngine(t)

	for _, path := range []string{"/health", "/ping", "/status"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestWebhookIsPublicAndReportsRequireAuth(t *testing.T) {
	engine := newTestEngine(t)

	body := `{"event_type":"ENTRY","license_plate":"ZUL0001","entry_time":"2025-01-01T12:00:00Z","sector":"A"}`
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/webhook", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			LicensePlate string `json:"license_plate"`
			Price        string `json:"price"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ZUL0001", resp.Data.LicensePlate)
	assert.Equal(t, "9.00", resp.Data.Price)

	for _, path := range []string{"/api/v1/revenue?date=2025-01-01", "/api/v1/garage/sectors", "/api/v1/vehicles/ZUL0001/status"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}
