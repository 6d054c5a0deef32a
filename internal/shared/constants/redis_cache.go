package constants

import (
	"fmt"
	"time"
)

// Redis key layout for garagehub
// Pattern: garagehub:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_STATIC_LONG   = 24 * time.Hour // garages are immutable after bootstrap
	TTL_REVENUE_SHORT = 1 * time.Minute
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "garagehub"
)

// ================== GARAGES MODULE ==================

const (
	CACHE_KEY_GARAGE_DETAIL  = CACHE_PREFIX + ":garages:detail:uuid:" // + garage-id
	CACHE_KEY_GARAGE_DEFAULT = CACHE_PREFIX + ":garages:default"
	CACHE_PATTERN_GARAGES    = CACHE_PREFIX + ":garages:*"
)

// ================== SESSIONS MODULE ==================

const (
	// Per-plate lease held for the duration of an ENTRY transition
	LOCK_KEY_PLATE = CACHE_PREFIX + ":sessions:lock:plate:" // + garage-id:plate
)

// ================== REVENUE MODULE ==================

const (
	CACHE_KEY_REVENUE_DAY = CACHE_PREFIX + ":revenue:day:" // + garage-id:date:sector
	CACHE_PATTERN_REVENUE = CACHE_PREFIX + ":revenue:*"

	REVENUE_DAY_LAYOUT = "2006-01-02"
)

// ================== RATE LIMITING ==================

const (
	RATE_LIMIT_PREFIX = CACHE_PREFIX + ":ratelimit:" // + type:client-id
)

// ================== KEY BUILDERS ==================

func BuildGarageDetailKey(garageID string) string {
	return CACHE_KEY_GARAGE_DETAIL + garageID
}

func BuildPlateLockKey(garageID, plate string) string {
	return fmt.Sprintf("%s%s:%s", LOCK_KEY_PLATE, garageID, plate)
}

func BuildRevenueKey(garageID, date, sector string) string {
	if sector == "" {
		sector = "all"
	}
	return fmt.Sprintf("%s%s:%s:%s", CACHE_KEY_REVENUE_DAY, garageID, date, sector)
}

// BuildRevenueDayPattern matches every sector entry of one garage and UTC day
func BuildRevenueDayPattern(garageID string, day time.Time) string {
	return BuildRevenueKey(garageID, day.UTC().Format(REVENUE_DAY_LAYOUT), "*")
}

func BuildRateLimitKey(limitType, clientID string) string {
	return fmt.Sprintf("%s%s:%s", RATE_LIMIT_PREFIX, limitType, clientID)
}
