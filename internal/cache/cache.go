// Package cache keeps snapshots of committed location rows keyed by IP.
//
// The database stays the source of truth: callers only Set snapshots of rows
// they have read or written, and Delete every IP a write touches. A snapshot
// can outlive its row only until its TTL when another process, not sharing
// this cache, writes to the same database.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evyataryagoni/iplocator/internal/models"
)

// LocationCache stores location snapshots keyed by canonical IP
type LocationCache interface {
	// Get returns the snapshot for ip; found is false on a miss
	Get(ctx context.Context, ip string) (location models.LocationDetails, found bool, err error)

	// Set stores a snapshot that expires after the cache TTL
	Set(ctx context.Context, ip string, location models.LocationDetails) error

	// Delete evicts the given IPs; missing keys are ignored
	Delete(ctx context.Context, ips ...string) error

	// Name identifies the backend in logs and metrics
	Name() string

	Close() error
}

// Config holds configuration for creating a location cache
type Config struct {
	Type string        // "memory", "redis" or "none"
	Size int           // max entries (memory only)
	TTL  time.Duration // snapshot lifetime

	// Redis-specific config
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New creates a location cache based on the configuration (factory pattern)
func New(cfg Config) (LocationCache, error) {
	cacheType := strings.ToLower(strings.TrimSpace(cfg.Type))

	switch cacheType {
	case "memory", "":
		return NewMemoryCache(cfg.Size, cfg.TTL), nil

	case "redis":
		c, err := NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis cache: %w", err)
		}
		return c, nil

	case "none", "off":
		return NopCache{}, nil

	default:
		return nil, fmt.Errorf("unknown cache type: %s (supported: 'memory', 'redis', 'none')", cfg.Type)
	}
}

// NopCache never stores anything; every Get is a miss
type NopCache struct{}

func (NopCache) Get(context.Context, string) (models.LocationDetails, bool, error) {
	return models.LocationDetails{}, false, nil
}

func (NopCache) Set(context.Context, string, models.LocationDetails) error { return nil }

func (NopCache) Delete(context.Context, ...string) error { return nil }

func (NopCache) Name() string { return "none" }

func (NopCache) Close() error { return nil }
