package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/evyataryagoni/iplocator/internal/limiter"
	"github.com/evyataryagoni/iplocator/internal/logger"
	"github.com/evyataryagoni/iplocator/internal/messages"
	"github.com/evyataryagoni/iplocator/internal/models"
)

// RateLimitMiddleware enforces rate limiting per client IP (returns 429 when exceeded)
func RateLimitMiddleware(lim limiter.Limiter, msgs *messages.Catalog, log *logger.Logger) func(http.Handler) http.Handler {
	if msgs == nil {
		msgs = messages.Default()
	}
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("RateLimit")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			if !lim.Allow(r.Context(), key) {
				log.WithContext(r.Context()).Warn().Str("client", key).Str("path", r.URL.Path).Msg("Rate limit exceeded")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(models.ErrorResponse{ // nolint: errcheck
					Error: msgs.Format(messages.RateLimitExceeded),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP identifies the caller.
// Priority: X-Real-IP > first X-Forwarded-For entry > RemoteAddr host.
func clientIP(r *http.Request) string {
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	// X-Forwarded-For format: "client, proxy1, proxy2"
	if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		if first := strings.TrimSpace(strings.SplitN(forwardedFor, ",", 2)[0]); first != "" {
			return first
		}
	}

	// Drop the port so that every connection of one client shares a bucket
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
