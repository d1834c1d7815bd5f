package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evyataryagoni/iplocator/internal/limiter"
	"github.com/evyataryagoni/iplocator/internal/logger"
	"github.com/evyataryagoni/iplocator/internal/messages"
	"github.com/evyataryagoni/iplocator/internal/models"
)

func newRateLimit(lim limiter.Limiter) func(http.Handler) http.Handler {
	return RateLimitMiddleware(lim, messages.Default(), logger.Nop())
}

// TestRateLimitMiddleware_Allowed tests request allowed
func TestRateLimitMiddleware_Allowed(t *testing.T) {
	mockLimiter := limiter.NewMockLimiter(true)

	nextCalled := false
	handler := newRateLimit(mockLimiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.Header().Set("X-Custom-Header", "test-value")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("success"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/locations", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !nextCalled {
		t.Error("expected next handler to be called")
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
	if rec.Header().Get("X-Custom-Header") != "test-value" {
		t.Error("expected custom header to be preserved")
	}
	if rec.Body.String() != "success" {
		t.Errorf("expected body 'success', got '%s'", rec.Body.String())
	}
}

// TestRateLimitMiddleware_RateLimited tests request blocked
func TestRateLimitMiddleware_RateLimited(t *testing.T) {
	mockLimiter := limiter.NewMockLimiter(false)

	nextCalled := false
	handler := newRateLimit(mockLimiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/location?ip=8.8.8.8", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if nextCalled {
		t.Error("expected next handler NOT to be called")
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var errResp models.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	if errResp.Error != "Rate limit exceeded. Please try again later." {
		t.Errorf("unexpected error message: %s", errResp.Error)
	}
}

// TestRateLimitMiddleware_IPExtraction tests IP extraction logic
func TestRateLimitMiddleware_IPExtraction(t *testing.T) {
	tests := []struct {
		name          string
		remoteAddr    string
		xRealIP       string
		xForwardedFor string
		expectedIP    string
	}{
		{
			name:       "RemoteAddr only",
			remoteAddr: "192.168.1.1:12345",
			expectedIP: "192.168.1.1",
		},
		{
			name:       "X-Real-IP takes priority",
			remoteAddr: "192.168.1.1:12345",
			xRealIP:    "10.0.0.1",
			expectedIP: "10.0.0.1",
		},
		{
			name:          "X-Forwarded-For when no X-Real-IP",
			remoteAddr:    "192.168.1.1:12345",
			xForwardedFor: "10.0.0.2",
			expectedIP:    "10.0.0.2",
		},
		{
			name:          "X-Real-IP over X-Forwarded-For",
			remoteAddr:    "192.168.1.1:12345",
			xRealIP:       "10.0.0.1",
			xForwardedFor: "10.0.0.2",
			expectedIP:    "10.0.0.1",
		},
		{
			name:          "X-Forwarded-For with multiple IPs",
			remoteAddr:    "192.168.1.1:12345",
			xForwardedFor: "10.0.0.3, 10.0.0.4, 10.0.0.5",
			expectedIP:    "10.0.0.3",
		},
		{
			name:       "IPv6 RemoteAddr",
			remoteAddr: "[2001:db8::1]:8080",
			expectedIP: "2001:db8::1",
		},
		{
			name:       "RemoteAddr without port",
			remoteAddr: "192.168.1.9",
			expectedIP: "192.168.1.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockLimiter := limiter.NewMockLimiter(true)
			handler := newRateLimit(mockLimiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}
			if tt.xForwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tt.xForwardedFor)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if len(mockLimiter.AllowCalls) != 1 {
				t.Fatalf("expected 1 limiter call, got %d", len(mockLimiter.AllowCalls))
			}
			if mockLimiter.AllowCalls[0] != tt.expectedIP {
				t.Errorf("expected IP %s, limiter called with %s", tt.expectedIP, mockLimiter.AllowCalls[0])
			}
		})
	}
}

// TestRateLimitMiddleware_PortsShareBucket tests that connections from one
// host are limited together
func TestRateLimitMiddleware_PortsShareBucket(t *testing.T) {
	lim := limiter.NewMemoryLimiter(1)
	handler := newRateLimit(lim)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := []int{}
	for _, addr := range []string{"192.168.1.1:1000", "192.168.1.1:2000"} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Errorf("expected [200 429], got %v", codes)
	}
}

// TestRateLimitMiddleware_CustomMessage tests a localized catalog
func TestRateLimitMiddleware_CustomMessage(t *testing.T) {
	path := t.TempDir() + "/messages.yaml"
	writeFile(t, path, "rate_limit_exceeded: \"Превышен лимит запросов\"\n")

	msgs, err := messages.Load(path)
	if err != nil {
		t.Fatalf("failed to load messages: %v", err)
	}

	handler := RateLimitMiddleware(limiter.NewMockLimiter(false), msgs, logger.Nop())(http.NotFoundHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	var errResp models.ErrorResponse
	json.NewDecoder(rec.Body).Decode(&errResp)

	if errResp.Error != "Превышен лимит запросов" {
		t.Errorf("unexpected error message: %s", errResp.Error)
	}
}
