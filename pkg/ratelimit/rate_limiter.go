package ratelimit

import (
	"context"
	"fmt"
	"time"

	"garagehub/internal/shared/config"
	"garagehub/internal/shared/constants"
	"garagehub/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RateLimitType string

const (
	RateLimitTypeDefault RateLimitType = "default"
	RateLimitTypePublic  RateLimitType = "public"
	RateLimitTypeWebhook RateLimitType = "webhook"
	RateLimitTypeAdmin   RateLimitType = "admin"
	RateLimitTypeHealth  RateLimitType = "health"
)

type Config struct {
	Enabled         bool          `json:"enabled"`
	WindowDuration  time.Duration `json:"window_duration"`
	DefaultRequests int           `json:"default_requests"`
	PublicRequests  int           `json:"public_requests"`
	WebhookRequests int           `json:"webhook_requests"`
	AdminRequests   int           `json:"admin_requests"`
	HealthRequests  int           `json:"health_requests"`
	WhitelistedIPs  []string      `json:"whitelisted_ips"`
}

func ConfigFromConfig(cfg config.RateLimitConfig) *Config {
	return &Config{
		Enabled:         cfg.Enabled,
		WindowDuration:  cfg.WindowDuration,
		DefaultRequests: cfg.DefaultRequests,
		PublicRequests:  cfg.PublicRequests,
		WebhookRequests: cfg.WebhookRequests,
		AdminRequests:   cfg.AdminRequests,
		HealthRequests:  cfg.HealthRequests,
		WhitelistedIPs:  cfg.WhitelistedIPs,
	}
}

// Result represents rate limit check result
type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// Sliding window over a sorted set. Members are unique per request so two
// hits in the same millisecond are both counted.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local window_start = tonumber(ARGV[1])
local now = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local window_ms = tonumber(ARGV[4])
local member = ARGV[5]

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

local current = redis.call('ZCARD', key)
if current >= limit then
	redis.call('PEXPIRE', key, window_ms)
	return {0, 0}
end

redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window_ms)
return {1, limit - current - 1}
`)

// RateLimiter handles rate limiting using Redis. A nil client disables
// enforcement; every request is allowed.
type RateLimiter struct {
	client    *redis.Client
	config    *Config
	whitelist map[string]struct{}
}

func NewRateLimiter(client *redis.Client, cfg *Config) *RateLimiter {
	whitelist := make(map[string]struct{}, len(cfg.WhitelistedIPs))
	for _, ip := range cfg.WhitelistedIPs {
		whitelist[ip] = struct{}{}
	}

	return &RateLimiter{
		client:    client,
		config:    cfg,
		whitelist: whitelist,
	}
}

// IsAllowed checks one request from clientIP against the limit of its class
func (r *RateLimiter) IsAllowed(ctx context.Context, clientIP string, limitType RateLimitType) (*Result, error) {
	limit := r.getLimit(limitType)

	if !r.config.Enabled || r.client == nil || r.isWhitelisted(clientIP) {
		return r.unlimited(limit), nil
	}

	key := constants.BuildRateLimitKey(string(limitType), clientIP)
	result, err := r.checkLimit(ctx, key, limit)
	if err != nil {
		// Redis trouble must not take the webhook down with it
		logger.FromContext(ctx).Warn("rate limit check failed, allowing request", "key", key, "error", err)
		return r.unlimited(limit), nil
	}
	return result, nil
}

func (r *RateLimiter) unlimited(limit int) *Result {
	return &Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit,
		ResetTime: time.Now().Add(r.config.WindowDuration).Unix(),
	}
}

func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int) (*Result, error) {
	now := time.Now()
	windowStart := now.Add(-r.config.WindowDuration)

	values, err := slidingWindowScript.Run(ctx, r.client, []string{key},
		windowStart.UnixMilli(),
		now.UnixMilli(),
		limit,
		r.config.WindowDuration.Milliseconds(),
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis script failed: %w", err)
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("unexpected redis response: %v", values)
	}

	return &Result{
		Allowed:   values[0] == 1,
		Limit:     limit,
		Remaining: int(values[1]),
		ResetTime: now.Add(r.config.WindowDuration).Unix(),
	}, nil
}

func (r *RateLimiter) getLimit(limitType RateLimitType) int {
	switch limitType {
	case RateLimitTypePublic:
		return r.config.PublicRequests
	case RateLimitTypeWebhook:
		return r.config.WebhookRequests
	case RateLimitTypeAdmin:
		return r.config.AdminRequests
	case RateLimitTypeHealth:
		return r.config.HealthRequests
	default:
		return r.config.DefaultRequests
	}
}

func (r *RateLimiter) isWhitelisted(ip string) bool {
	_, ok := r.whitelist[ip]
	return ok
}
