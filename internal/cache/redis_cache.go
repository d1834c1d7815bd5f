package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/evyataryagoni/iplocator/internal/models"
)

// RedisCache stores snapshots in Redis so that all server instances share
// one cache and see each other's evictions.
//
// Key Format: location:<ip>
// Example: location:8.8.8.8
// Value: JSON-encoded LocationDetails with the cache TTL as expiry
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return newRedisCacheWithClient(client, ttl)
}

// newRedisCacheWithClient takes ownership of client and closes it when the
// server is unreachable.
func newRedisCacheWithClient(client *redis.Client, ttl time.Duration) (*RedisCache, error) {
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func redisKey(ip string) string {
	return fmt.Sprintf("location:%s", ip)
}

func (c *RedisCache) Get(ctx context.Context, ip string) (models.LocationDetails, bool, error) {
	var location models.LocationDetails

	val, err := c.client.Get(ctx, redisKey(ip)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return location, false, nil
		}
		return location, false, fmt.Errorf("Redis query failed: %w", err)
	}

	if err := json.Unmarshal(val, &location); err != nil {
		return location, false, fmt.Errorf("failed to decode cached location: %w", err)
	}

	return location, true, nil
}

func (c *RedisCache) Set(ctx context.Context, ip string, location models.LocationDetails) error {
	data, err := json.Marshal(location)
	if err != nil {
		return fmt.Errorf("failed to encode location: %w", err)
	}

	if err := c.client.Set(ctx, redisKey(ip), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store in Redis: %w", err)
	}

	return nil
}

func (c *RedisCache) Delete(ctx context.Context, ips ...string) error {
	if len(ips) == 0 {
		return nil
	}

	keys := make([]string, 0, len(ips))
	for _, ip := range ips {
		keys = append(keys, redisKey(ip))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from Redis: %w", err)
	}

	return nil
}

func (c *RedisCache) Name() string {
	return "redis"
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
