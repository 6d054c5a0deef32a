package routes

import (
	"net/http"
	"time"

	_ "garagehub/docs"
	"garagehub/internal/capacity"
	"garagehub/internal/garages"
	"garagehub/internal/notifications"
	"garagehub/internal/pricing"
	"garagehub/internal/revenue"
	"garagehub/internal/sessions"
	"garagehub/internal/shared/config"
	"garagehub/internal/shared/database"
	"garagehub/internal/shared/retry"
	"garagehub/internal/spots"
	"garagehub/internal/webhook"
	"garagehub/pkg/cache"
	"garagehub/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB
	stores Stores

	garageService  garages.Service
	sessionService sessions.Service
	revenueService revenue.Service
	dispatcher     webhook.Dispatcher
}

// NewRouter builds the services once so the HTTP routes and the event
// consumer share them. db.Redis may be nil.
func NewRouter(cfg *config.Config, db *database.DB, stores Stores, publisher notifications.Publisher, recorder *metrics.Recorder) *Router {
	var cacheService cache.Service
	var locker sessions.PlateLocker
	if db.Redis != nil {
		cacheService = cache.NewService(db.Redis)
		locker = sessions.NewRedisPlateLocker(db.Redis, cfg.Redis.PlateLockTTL)
	} else {
		locker = sessions.NewLocalPlateLocker()
	}

	policy := retry.PolicyFromConfig(cfg.Parking)
	garageService := garages.NewService(stores.Garages, cacheService, cfg.Redis.GarageCacheTTL)

	sessionService := sessions.NewService(sessions.Dependencies{
		Repo:          stores.Sessions,
		Tx:            stores.Tx,
		Garages:       garageService,
		Capacity:      capacity.NewManager(stores.Garages, policy),
		Spots:         spots.NewService(stores.Garages, cfg.Parking.SpotTolerance, policy),
		Pricing:       pricing.NewEngine(stores.Pricing, cfg.Parking.FreeMinutes),
		Locker:        locker,
		Publisher:     publisher,
		Policy:        policy,
		DefaultSector: cfg.Parking.DefaultSector,
		Cache:         cacheService,
	})

	return &Router{
		config:         cfg,
		db:             db,
		stores:         stores,
		garageService:  garageService,
		sessionService: sessionService,
		revenueService: revenue.NewService(stores.Revenue, garageService, cacheService, cfg.Revenue.Currency),
		dispatcher:     webhook.Instrument(sessionService, recorder),
	}
}

// Dispatcher is the event entry point shared by the webhook and the consumer
func (r *Router) Dispatcher() webhook.Dispatcher {
	return r.dispatcher
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group(r.config.GetAPIBasePath())
	{
		webhook.SetupWebhookRoutes(api, webhook.NewController(r.dispatcher))
		garages.SetupGarageRoutes(api, garages.NewController(r.garageService))
		pricing.SetupPricingRoutes(api, pricing.NewController(r.stores.Pricing))
		sessions.SetupSessionRoutes(api, sessions.NewController(r.sessionService))
		revenue.SetupRevenueRoutes(api, revenue.NewController(r.revenueService))
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "garagehub",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "garagehub",
			"store":     r.config.Database.Driver,
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}
