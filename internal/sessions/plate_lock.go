package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// PlateLocker hands out short leases that serialize ENTRY handling for one
// vehicle across processes. Losing the lease store never loses the
// one-active-session guarantee, which the session table enforces on its own.
type PlateLocker interface {
	Acquire(ctx context.Context, key, token string) (bool, error)
	Release(ctx context.Context, key, token string) error
}

// Lua script for atomic lease release - only the holder may delete the key
const luaReleasePlateLease = `
-- KEYS[1] = lease key
-- ARGV[1] = holder token
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`

var releasePlateLease = redis.NewScript(luaReleasePlateLease)

// RedisPlateLocker keeps leases in Redis with SET NX PX
type RedisPlateLocker struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisPlateLocker creates a Redis backed locker. ttl bounds how long a
// crashed holder can block the plate.
func NewRedisPlateLocker(redisClient *redis.Client, ttl time.Duration) *RedisPlateLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisPlateLocker{redis: redisClient, ttl: ttl}
}

func (l *RedisPlateLocker) Acquire(ctx context.Context, key, token string) (bool, error) {
	ok, err := l.redis.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire plate lease: %w", err)
	}
	return ok, nil
}

func (l *RedisPlateLocker) Release(ctx context.Context, key, token string) error {
	if err := releasePlateLease.Run(ctx, l.redis, []string{key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release plate lease: %w", err)
	}
	return nil
}

// PreloadScripts loads Lua scripts into Redis for better performance
func (l *RedisPlateLocker) PreloadScripts(ctx context.Context) error {
	if err := releasePlateLease.Load(ctx, l.redis).Err(); err != nil {
		return fmt.Errorf("failed to load lease release script: %w", err)
	}
	return nil
}

// LocalPlateLocker is an in-process locker for single instance deployments
type LocalPlateLocker struct {
	mu     sync.Mutex
	leases map[string]string
}

func NewLocalPlateLocker() *LocalPlateLocker {
	return &LocalPlateLocker{leases: make(map[string]string)}
}

func (l *LocalPlateLocker) Acquire(_ context.Context, key, token string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.leases[key]; held {
		return false, nil
	}
	l.leases[key] = token
	return true, nil
}

func (l *LocalPlateLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.leases[key] == token {
		delete(l.leases, key)
	}
	return nil
}
