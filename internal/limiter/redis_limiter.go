package limiter

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/evyataryagoni/iplocator/internal/logger"
)

// fixedWindowScript increments the counter of the current window and sets
// its expiry on first use. It runs atomically on the Redis server.
//
// KEYS[1] = counter key, ARGV[1] = TTL in seconds
var fixedWindowScript = redis.NewScript(`
local current = redis.call('INCR', KEYS[1])
if current == 1 then
	redis.call('EXPIRE', KEYS[1], tonumber(ARGV[1]))
end
return current
`)

// RedisLimiter implements distributed rate limiting using Redis, so that
// all instances behind a load balancer share one budget per client.
//
// Algorithm: fixed window counter.
// Key format: "ratelimit:{ip}:{window}"
type RedisLimiter struct {
	client     *redis.Client
	limit      int64
	windowSize time.Duration
	logger     *logger.Logger
}

// NewRedisLimiter creates a new Redis-based rate limiter
//
// Parameters:
//   - addr: Redis server address (e.g., "localhost:6379")
//   - password: Redis password (empty string if no password)
//   - db: Redis database number
//   - requestsPerSecond: allowed requests per second per IP (can be fractional, e.g., 0.2)
func NewRedisLimiter(addr, password string, db int, requestsPerSecond float64) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis for rate limiting: %w", err)
	}

	// Fractional rates get a longer window: 0.2 req/s -> 1 request per 5s
	windowSize := time.Second
	if requestsPerSecond > 0 && requestsPerSecond < 1.0 {
		windowSize = time.Duration(float64(time.Second) / requestsPerSecond)
	}

	return &RedisLimiter{
		client:     client,
		limit:      int64(math.Ceil(requestsPerSecond * windowSize.Seconds())),
		windowSize: windowSize,
		logger:     logger.Global().WithComponent("RedisLimiter"),
	}, nil
}

// Allow implements Limiter. Redis failures fail open so that a cache
// outage does not take the API down.
func (rl *RedisLimiter) Allow(ctx context.Context, key string) bool {
	windowSeconds := int64(rl.windowSize / time.Second)
	window := time.Now().Unix() / windowSeconds
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, window)

	count, err := fixedWindowScript.Run(ctx, rl.client, []string{redisKey}, windowSeconds*2).Int64()
	if err != nil {
		rl.logger.Warn().Err(err).Str("key", key).Msg("Rate limiter unavailable, allowing request")
		return true
	}

	return count <= rl.limit
}

// Close closes the Redis connection
func (rl *RedisLimiter) Close() error {
	if rl.client != nil {
		return rl.client.Close()
	}
	return nil
}
