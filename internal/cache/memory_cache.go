package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/evyataryagoni/iplocator/internal/models"
)

const (
	defaultMemorySize = 1024
	defaultTTL        = 10 * time.Minute
)

// MemoryCache is a size-bounded LRU whose entries also expire after a TTL.
// Suitable for single-server deployments; safe for concurrent use.
type MemoryCache struct {
	lru *expirable.LRU[string, models.LocationDetails]
}

// NewMemoryCache creates an in-memory cache holding at most size entries.
// Non-positive arguments fall back to 1024 entries and 10 minutes.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = defaultMemorySize
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &MemoryCache{
		lru: expirable.NewLRU[string, models.LocationDetails](size, nil, ttl),
	}
}

func (c *MemoryCache) Get(_ context.Context, ip string) (models.LocationDetails, bool, error) {
	location, ok := c.lru.Get(ip)
	return location, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, ip string, location models.LocationDetails) error {
	c.lru.Add(ip, location)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, ips ...string) error {
	for _, ip := range ips {
		c.lru.Remove(ip)
	}
	return nil
}

// Len reports the number of live entries
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

func (c *MemoryCache) Name() string {
	return "memory"
}

// Close drops all entries
func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}
