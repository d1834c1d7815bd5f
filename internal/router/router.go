package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/evyataryagoni/iplocator/docs" // Swagger docs
	"github.com/evyataryagoni/iplocator/internal/handler"
	"github.com/evyataryagoni/iplocator/internal/limiter"
	"github.com/evyataryagoni/iplocator/internal/logger"
	"github.com/evyataryagoni/iplocator/internal/messages"
	"github.com/evyataryagoni/iplocator/internal/metrics"
	custommiddleware "github.com/evyataryagoni/iplocator/internal/middleware"
	"github.com/evyataryagoni/iplocator/internal/router/api"
)

// Dependencies groups what the router wires into routes and middleware
type Dependencies struct {
	Locations   *handler.LocationHandler
	Users       *handler.UserHandler
	RateLimiter limiter.Limiter
	Messages    *messages.Catalog
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer // source for /metrics; defaults to the global registry
	Logger      *logger.Logger
}

// SetupRouter creates and configures the Chi router with all middleware and routes
func SetupRouter(deps Dependencies) chi.Router {
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()

	// Order matters! RequestID first so every later log line carries it
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.LoggingMiddleware(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(custommiddleware.MetricsMiddleware(deps.Metrics))

	// Only the API is rate limited; probes and scrapes are not
	r.With(custommiddleware.RateLimitMiddleware(deps.RateLimiter, deps.Messages, deps.Logger)).
		Mount("/api", api.SetupRoutes(deps.Locations, deps.Users))

	// Health check endpoint - used by load balancers and monitoring
	r.Get("/health", healthCheckHandler)

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Swagger UI: http://localhost:3000/swagger/index.html
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}

// healthCheckHandler returns 200 OK while the process is serving
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
