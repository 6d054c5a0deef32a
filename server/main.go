package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"garagehub/api/routes"
	"garagehub/internal/garages"
	"garagehub/internal/notifications"
	"garagehub/internal/sessions"
	"garagehub/internal/shared/config"
	"garagehub/internal/shared/database"
	"garagehub/internal/shared/database/memstore"
	"garagehub/internal/shared/database/schema"
	"garagehub/internal/shared/middleware"
	"garagehub/internal/webhook"
	"garagehub/pkg/logger"
	"garagehub/pkg/metrics"
	"garagehub/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	appLogger = logger.NewWithLevel(cfg.LogLevel)
	logger.SetDefault(appLogger)

	gin.SetMode(cfg.GinMode)

	db, stores, err := openStores(cfg)
	if err != nil {
		appLogger.Error("failed to initialize storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if db.Redis != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		locker := sessions.NewRedisPlateLocker(db.Redis, cfg.Redis.PlateLockTTL)
		if err := locker.PreloadScripts(ctx); err != nil {
			// scripts are loaded on first use anyway
			appLogger.Error("Failed to preload Redis Lua scripts", slog.Any("error", err))
		} else {
			appLogger.Info("Redis Lua scripts preloaded for plate leases")
		}
		cancel()
	}

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(db.Redis, ratelimit.ConfigFromConfig(cfg.RateLimit))
		appLogger.Info("Rate limiter initialized",
			slog.Bool("redis", db.Redis != nil),
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("webhook_requests", cfg.RateLimit.WebhookRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	publisher := newPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			appLogger.Error("Error closing lifecycle publisher", slog.Any("error", err))
		}
	}()

	appRouter := routes.NewRouter(cfg, db, stores, publisher, metrics.NewRecorder(prometheus.DefaultRegisterer))
	engine := setupEngine(appRouter, rateLimiter)

	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()

	if cfg.Kafka.ConsumerEnabled {
		consumer, err := webhook.NewKafkaEventConsumer(webhook.ConsumerConfigFromConfig(cfg.Kafka), appRouter.Dispatcher())
		if err != nil {
			appLogger.Error("Failed to initialize event consumer", slog.Any("error", err))
			appLogger.Info("Continuing without Kafka ingestion; webhook remains available")
		} else {
			if err := consumer.StartConsumers(logger.IntoContext(consumerCtx, appLogger), cfg.Kafka.ConsumerWorkers); err != nil {
				appLogger.Error("Failed to start event consumer", slog.Any("error", err))
			}
			defer func() {
				appLogger.Info("Stopping event consumer...")
				if err := consumer.Stop(); err != nil {
					appLogger.Error("Error stopping event consumer", slog.Any("error", err))
				}
			}()
		}
	}

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("webhook", fmt.Sprintf("http://localhost:%s%s/webhook", cfg.Port, cfg.GetAPIBasePath())),
			slog.String("version", Version),
			slog.String("commit", GitCommit),
			slog.String("built", BuildTime),
			slog.String("store", cfg.Database.Driver),
			slog.Bool("redis", db.Redis != nil),
			slog.Bool("kafka_consumer", cfg.Kafka.ConsumerEnabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

// openStores connects the configured persistence. The memory driver starts
// with the demo garage already laid out.
func openStores(cfg *config.Config) (*database.DB, routes.Stores, error) {
	if !cfg.UsesMemoryStore() {
		db, err := database.InitDB(cfg)
		if err != nil {
			return nil, routes.Stores{}, err
		}
		if err := schema.Migrate(db.PostgreSQL); err != nil {
			db.Close()
			return nil, routes.Stores{}, fmt.Errorf("failed to migrate schema: %w", err)
		}
		return db, routes.PostgresStores(db.PostgreSQL), nil
	}

	db := &database.DB{}
	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(cfg)
		if err != nil {
			logger.GetDefault().Warn("Redis unavailable, using in-process leases", "error", err)
		} else {
			db.Redis = rdb
		}
	}

	store := memstore.New()
	garage, err := garages.Bootstrap(context.Background(), store, store, store, garages.DefaultLayout())
	if err != nil {
		return nil, routes.Stores{}, fmt.Errorf("failed to bootstrap garage: %w", err)
	}
	logger.GetDefault().Info("In-memory store ready", "garage_id", garage.ID, "garage", garage.Name)

	return db, routes.MemoryStores(store), nil
}

func newPublisher(cfg *config.Config) notifications.Publisher {
	if !cfg.Kafka.PublisherEnabled {
		return notifications.LogPublisher{}
	}

	publisher, err := notifications.NewKafkaPublisher(notifications.ProducerConfigFromConfig(cfg.Kafka))
	if err != nil {
		logger.GetDefault().Error("Failed to create lifecycle publisher, falling back to logs", slog.Any("error", err))
		return notifications.LogPublisher{}
	}
	return publisher
}

func setupEngine(appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()

	engine.Use(middleware.RequestID(), middleware.RequestLogger(), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	appRouter.SetupRoutes(engine)
	return engine
}
