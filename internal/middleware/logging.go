package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/evyataryagoni/iplocator/internal/logger"
)

// LoggingMiddleware logs one line per request, tagged with method, path
// and request_id. It must run after chi's RequestID.
func LoggingMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.NewDefault()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := log.WithContext(r.Context()).With().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()

			reqLog.Debug().
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Msg("Request started")

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			event := reqLog.WithLevel(levelFor(status)).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration_ms", time.Since(start))

			if r.URL.RawQuery != "" {
				event = event.Str("query", r.URL.RawQuery)
			}
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				event = event.Str("route", rctx.RoutePattern())
			}

			event.Msg("Request completed")
		})
	}
}

func levelFor(status int) zerolog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case status >= http.StatusBadRequest:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
