package cache

import (
	"context"

	"github.com/evyataryagoni/iplocator/internal/metrics"
	"github.com/evyataryagoni/iplocator/internal/models"
)

// instrumentedCache counts hits, misses and errors per backend
type instrumentedCache struct {
	LocationCache
	metrics *metrics.Metrics
}

// WithMetrics wraps c so that every Get is recorded in
// iplocator_cache_lookups_total. A nil m returns c unchanged.
func WithMetrics(c LocationCache, m *metrics.Metrics) LocationCache {
	if m == nil {
		return c
	}
	return instrumentedCache{LocationCache: c, metrics: m}
}

func (c instrumentedCache) Get(ctx context.Context, ip string) (models.LocationDetails, bool, error) {
	location, found, err := c.LocationCache.Get(ctx, ip)

	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case found:
		result = "hit"
	}
	c.metrics.CacheLookupsTotal.WithLabelValues(c.Name(), result).Inc()

	return location, found, err
}
