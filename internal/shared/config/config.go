package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all configuration for the garage service
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// Kafka configuration
	Kafka KafkaConfig

	// JWT configuration
	JWT JWTConfig

	// Rate limiting
	RateLimit RateLimitConfig

	// Parking engine
	Parking ParkingConfig

	// Revenue reporting
	Revenue RevenueConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string // "postgres" or "memory"
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	DSN      string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string

	PlateLockTTL   time.Duration
	GarageCacheTTL time.Duration
}

// KafkaConfig holds broker and topic configuration
type KafkaConfig struct {
	Brokers          []string
	EventsTopic      string
	LifecycleTopic   string
	ConsumerGroupID  string
	ConsumerWorkers  int
	ConsumerEnabled  bool
	PublisherEnabled bool
}

// JWTConfig holds JWT configuration. Tokens are issued by an external
// identity provider and only verified here.
type JWTConfig struct {
	Secret string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool          `json:"enabled"`
	WindowDuration  time.Duration `json:"window_duration"`
	DefaultRequests int           `json:"default_requests"`
	WebhookRequests int           `json:"webhook_requests"`
	PublicRequests  int           `json:"public_requests"`
	AdminRequests   int           `json:"admin_requests"`
	HealthRequests  int           `json:"health_requests"`
	WhitelistedIPs  []string      `json:"whitelisted_ips"`
}

// ParkingConfig holds the tunables of the event-processing engine
type ParkingConfig struct {
	DefaultSector        string
	SpotTolerance        decimal.Decimal
	FreeMinutes          int
	MaxRetries           int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
}

// RevenueConfig holds revenue reporting settings
type RevenueConfig struct {
	Currency string
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Driver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     getEnv("DB_NAME", "garagehub_db"),
			User:     getEnv("DB_USER", "garagehub_user"),
			Password: getEnv("DB_PASSWORD", "garagehub_password"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		// Redis configuration
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),

			PlateLockTTL:   getDurationEnv("REDIS_PLATE_LOCK_TTL", 10*time.Second),
			GarageCacheTTL: getDurationEnv("REDIS_GARAGE_CACHE_TTL", 1*time.Hour),
		},

		// Kafka configuration
		Kafka: KafkaConfig{
			Brokers:          getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			EventsTopic:      getEnv("KAFKA_EVENTS_TOPIC", "garage-events"),
			LifecycleTopic:   getEnv("KAFKA_LIFECYCLE_TOPIC", "parking-lifecycle"),
			ConsumerGroupID:  getEnv("KAFKA_CONSUMER_GROUP", "garagehub-event-workers"),
			ConsumerWorkers:  getIntEnv("KAFKA_CONSUMER_WORKERS", 2),
			ConsumerEnabled:  getBoolEnv("KAFKA_CONSUMER_ENABLED", false),
			PublisherEnabled: getBoolEnv("KAFKA_PUBLISHER_ENABLED", false),
		},

		// JWT configuration
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:         getBoolEnv("RATE_LIMIT_ENABLED", true),
			WindowDuration:  getDurationEnv("RATE_LIMIT_WINDOW_DURATION", 60*time.Second),
			DefaultRequests: getIntEnv("RATE_LIMIT_DEFAULT_REQUESTS", 60),
			WebhookRequests: getIntEnv("RATE_LIMIT_WEBHOOK_REQUESTS", 1200),
			PublicRequests:  getIntEnv("RATE_LIMIT_PUBLIC_REQUESTS", 120),
			AdminRequests:   getIntEnv("RATE_LIMIT_ADMIN_REQUESTS", 200),
			HealthRequests:  getIntEnv("RATE_LIMIT_HEALTH_REQUESTS", 600),
			WhitelistedIPs:  getStringSliceEnv("RATE_LIMIT_WHITELISTED_IPS", []string{}),
		},

		// Parking engine
		Parking: ParkingConfig{
			DefaultSector:        strings.ToUpper(getEnv("PARKING_DEFAULT_SECTOR", "A")),
			SpotTolerance:        getDecimalEnv("PARKING_SPOT_TOLERANCE", decimal.RequireFromString("0.000001")),
			FreeMinutes:          getIntEnv("PARKING_FREE_MINUTES", 30),
			MaxRetries:           getIntEnv("PARKING_MAX_RETRIES", 5),
			RetryInitialInterval: getDurationEnv("PARKING_RETRY_INITIAL_INTERVAL", 20*time.Millisecond),
			RetryMaxInterval:     getDurationEnv("PARKING_RETRY_MAX_INTERVAL", 500*time.Millisecond),
		},

		Revenue: RevenueConfig{
			Currency: getEnv("REVENUE_CURRENCY", "BRL"),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build database DSN
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)

	// Build Redis address
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	return "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getDecimalEnv parses a fixed-point value; invalid or negative input falls back
func getDecimalEnv(key string, fallback decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil && !d.IsNegative() {
			return d
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// UsesMemoryStore reports whether persistence is the in-process store
func (c *Config) UsesMemoryStore() bool {
	return c.Database.Driver == "memory"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
