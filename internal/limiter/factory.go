package limiter

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownType is returned by NewLimiter for an unsupported Type
var ErrUnknownType = errors.New("unknown rate limiter type")

// LimiterConfig holds configuration for creating a rate limiter
type LimiterConfig struct {
	Type              string  // "memory", "redis" or "none"
	RequestsPerSecond float64 // per client; may be fractional (0.2 = 1 req per 5 sec)

	// Redis-specific config
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewLimiter builds the limiter selected by cfg.Type.
// "memory" (the default) keeps per-process token buckets, "redis" shares one
// budget across instances, and "none" admits everything.
func NewLimiter(cfg LimiterConfig) (Limiter, error) {
	kind := strings.ToLower(strings.TrimSpace(cfg.Type))
	if kind == "none" {
		return Unlimited{}, nil
	}

	if cfg.RequestsPerSecond <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %v requests per second", cfg.RequestsPerSecond)
	}

	switch kind {
	case "memory", "":
		return NewMemoryLimiter(cfg.RequestsPerSecond), nil
	case "redis":
		redisLimiter, err := NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RequestsPerSecond)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis limiter: %w", err)
		}
		return redisLimiter, nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: memory, redis, none)", ErrUnknownType, cfg.Type)
	}
}

// Unlimited admits every request
type Unlimited struct{}

// Allow implements Limiter
func (Unlimited) Allow(context.Context, string) bool { return true }

// Close implements Limiter
func (Unlimited) Close() error { return nil }
