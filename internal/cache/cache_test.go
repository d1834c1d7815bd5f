package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evyataryagoni/iplocator/internal/metrics"
	"github.com/evyataryagoni/iplocator/internal/models"
)

func sampleLocation() models.LocationDetails {
	lat, lon := 37.386, -122.0838
	return models.LocationDetails{
		ID:        1,
		IPAddress: "8.8.8.8",
		City:      "Mountain View",
		Country:   "United States",
		Continent: "North America",
		Latitude:  &lat,
		Longitude: &lon,
		Timezone:  "America/Los_Angeles",
		UserID:    4,
	}
}

func newRedisCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(mr.Addr(), "", 0, ttl)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return c, mr
}

// runContract exercises behaviour every backend must share
func runContract(t *testing.T, c LocationCache) {
	ctx := context.Background()

	_, found, err := c.Get(ctx, "8.8.8.8")
	require.NoError(t, err)
	assert.False(t, found, "empty cache must miss")

	require.NoError(t, c.Set(ctx, "8.8.8.8", sampleLocation()))

	got, found, err := c.Get(ctx, "8.8.8.8")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, sampleLocation(), got)

	require.NoError(t, c.Delete(ctx, "8.8.8.8", "1.1.1.1"))

	_, found, err = c.Get(ctx, "8.8.8.8")
	require.NoError(t, err)
	assert.False(t, found, "deleted key must miss")

	assert.NoError(t, c.Delete(ctx))
}

func TestMemoryCache_Contract(t *testing.T) {
	runContract(t, NewMemoryCache(16, time.Minute))
}

func TestRedisCache_Contract(t *testing.T) {
	c, _ := newRedisCache(t, time.Minute)
	runContract(t, c)
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, time.Minute)

	require.NoError(t, c.Set(ctx, "1.1.1.1", models.LocationDetails{City: "Sydney"}))
	require.NoError(t, c.Set(ctx, "2.2.2.2", models.LocationDetails{City: "Paris"}))

	// touch 1.1.1.1 so 2.2.2.2 becomes the eviction candidate
	_, _, _ = c.Get(ctx, "1.1.1.1")
	require.NoError(t, c.Set(ctx, "3.3.3.3", models.LocationDetails{City: "Berlin"}))

	_, found, _ := c.Get(ctx, "2.2.2.2")
	assert.False(t, found)
	_, found, _ = c.Get(ctx, "1.1.1.1")
	assert.True(t, found)
	assert.Equal(t, 2, c.Len())
}

func TestMemoryCache_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(8, 50*time.Millisecond)

	require.NoError(t, c.Set(ctx, "8.8.8.8", sampleLocation()))
	time.Sleep(120 * time.Millisecond)

	_, found, _ := c.Get(ctx, "8.8.8.8")
	assert.False(t, found, "entry must expire after TTL")
}

func TestMemoryCache_Defaults(t *testing.T) {
	c := NewMemoryCache(0, 0)
	require.NoError(t, c.Set(context.Background(), "8.8.8.8", sampleLocation()))
	assert.Equal(t, 1, c.Len())
	assert.NoError(t, c.Close())
	assert.Equal(t, 0, c.Len())
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, 30*time.Second)

	require.NoError(t, c.Set(ctx, "8.8.8.8", sampleLocation()))
	assert.Equal(t, 30*time.Second, mr.TTL("location:8.8.8.8"))

	mr.FastForward(31 * time.Second)

	_, found, err := c.Get(ctx, "8.8.8.8")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_CorruptValue(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)
	require.NoError(t, mr.Set("location:8.8.8.8", "{not json"))

	_, found, err := c.Get(context.Background(), "8.8.8.8")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestRedisCache_ServerDown(t *testing.T) {
	c, mr := newRedisCache(t, time.Minute)
	mr.Close()

	_, found, err := c.Get(context.Background(), "8.8.8.8")
	assert.Error(t, err)
	assert.False(t, found)
	assert.Error(t, c.Set(context.Background(), "8.8.8.8", sampleLocation()))
}

func TestNewRedisCache_ConnectionFailure(t *testing.T) {
	_, err := NewRedisCache("invalid:9999", "", 0, time.Minute)
	assert.Error(t, err)
}

// TestNewRedisCache_ConnectionFailureClosesClient tests that the pool of an
// unreachable server is released
func TestNewRedisCache_ConnectionFailureClosesClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	c, err := newRedisCacheWithClient(client, time.Minute)
	require.Error(t, err)
	assert.Nil(t, c)

	assert.ErrorIs(t, client.Ping(context.Background()).Err(), redis.ErrClosed)
}

func TestNopCache(t *testing.T) {
	ctx := context.Background()
	var c LocationCache = NopCache{}

	require.NoError(t, c.Set(ctx, "8.8.8.8", sampleLocation()))
	_, found, err := c.Get(ctx, "8.8.8.8")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "none", c.Name())
}

func TestNew_Factory(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name     string
		cfg      Config
		expected string
	}{
		{"default is memory", Config{}, "memory"},
		{"memory", Config{Type: "MEMORY", Size: 4, TTL: time.Minute}, "memory"},
		{"redis", Config{Type: "redis", RedisAddr: mr.Addr(), TTL: time.Minute}, "redis"},
		{"none", Config{Type: "none"}, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			require.NoError(t, err)
			defer c.Close()
			assert.Equal(t, tt.expected, c.Name())
		})
	}

	_, err := New(Config{Type: "memcached"})
	assert.Error(t, err)
}

func TestWithMetrics(t *testing.T) {
	ctx := context.Background()
	m := metrics.New(prometheus.NewRegistry())
	c := WithMetrics(NewMemoryCache(4, time.Minute), m)

	_, _, _ = c.Get(ctx, "8.8.8.8")
	require.NoError(t, c.Set(ctx, "8.8.8.8", sampleLocation()))
	_, _, _ = c.Get(ctx, "8.8.8.8")
	_, _, _ = c.Get(ctx, "8.8.8.8")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("memory", "miss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("memory", "hit")))

	plain := NewMemoryCache(4, time.Minute)
	assert.Same(t, plain, WithMetrics(plain, nil).(*MemoryCache))
}
