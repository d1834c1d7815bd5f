package limiter

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is the interface that all rate limiters must implement
// This allows us to easily swap between in-memory and Redis implementations
type Limiter interface {
	// Allow reports whether one more request from key (a client IP) fits
	// in its budget
	Allow(ctx context.Context, key string) bool

	// Close cleans up any resources (Redis connections, goroutines, etc.)
	Close() error
}

// idleTimeout is how long a client bucket may stay unused before removal
const idleTimeout = 5 * time.Minute

// clientBucket is one client's token bucket plus its last use
type clientBucket struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

func (b *clientBucket) touch(now time.Time) {
	b.mu.Lock()
	b.lastSeen = now
	b.mu.Unlock()
}

func (b *clientBucket) idleSince(threshold time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSeen.Before(threshold)
}

// MemoryLimiter keeps a token bucket per client (per-IP) in process memory.
// Thread-safe using sync.Map; suitable for single-server deployments.
type MemoryLimiter struct {
	buckets     sync.Map // map[string]*clientBucket
	limit       rate.Limit
	burst       int
	cleanupMu   sync.Mutex
	lastCleanup time.Time
}

// NewMemoryLimiter creates a new in-memory rate limiter.
// requestsPerSecond may be fractional (0.2 = one request per 5 seconds);
// the burst equals one second worth of requests, at least 1.
func NewMemoryLimiter(requestsPerSecond float64) *MemoryLimiter {
	return &MemoryLimiter{
		limit:       rate.Limit(requestsPerSecond),
		burst:       int(math.Max(1, math.Ceil(requestsPerSecond))),
		lastCleanup: time.Now(),
	}
}

// Allow implements Limiter
func (rl *MemoryLimiter) Allow(_ context.Context, key string) bool {
	now := time.Now()

	bucket := rl.getBucket(key, now)
	bucket.touch(now)
	allowed := bucket.limiter.AllowN(now, 1)

	// Periodically clean up old buckets (prevent memory leak)
	rl.maybeCleanup(now)

	return allowed
}

// getBucket gets or creates the bucket for key.
// LoadOrStore handles concurrent first requests from one client.
func (rl *MemoryLimiter) getBucket(key string, now time.Time) *clientBucket {
	if value, ok := rl.buckets.Load(key); ok {
		return value.(*clientBucket)
	}

	bucket := &clientBucket{
		limiter:  rate.NewLimiter(rl.limit, rl.burst),
		lastSeen: now,
	}

	actual, _ := rl.buckets.LoadOrStore(key, bucket)
	return actual.(*clientBucket)
}

// maybeCleanup removes buckets idle for idleTimeout, at most once per
// idleTimeout
func (rl *MemoryLimiter) maybeCleanup(now time.Time) {
	rl.cleanupMu.Lock()
	defer rl.cleanupMu.Unlock()

	if now.Sub(rl.lastCleanup) < idleTimeout {
		return
	}

	threshold := now.Add(-idleTimeout)
	rl.buckets.Range(func(key, value interface{}) bool {
		if value.(*clientBucket).idleSince(threshold) {
			rl.buckets.Delete(key)
		}
		return true
	})

	rl.lastCleanup = now
}

// Len returns the number of tracked clients
func (rl *MemoryLimiter) Len() int {
	n := 0
	rl.buckets.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

// Close implements Limiter; the in-memory limiter holds no resources
func (rl *MemoryLimiter) Close() error {
	return nil
}
