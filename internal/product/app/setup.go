// Package app contains the application setup for the ProductService.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/productstore/internal/product/config"
	"github.com/abgdnv/productstore/internal/product/service"
	"github.com/abgdnv/productstore/internal/product/store"
	"github.com/abgdnv/productstore/internal/product/transport/rest"
	pkgconfig "github.com/abgdnv/productstore/pkg/config"
	"github.com/abgdnv/productstore/pkg/server"
	"github.com/abgdnv/productstore/pkg/web"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

const operationName = "product-service"

// Dependencies holds everything the HTTP and gRPC servers are built from.
type Dependencies struct {
	ProductService service.ProductService
	Logger         *slog.Logger
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	// RateLimiter is nil when rate limiting is disabled.
	RateLimiter *web.RateLimiter
}

// SetupDependencies builds the service graph on top of a fresh in-memory store.
func SetupDependencies(logger *slog.Logger, metricsHandler http.Handler, rl pkgconfig.RateLimitConfig) *Dependencies {
	pService := service.NewService(store.NewInMemoryStore())

	var limiter *web.RateLimiter
	if rl.Enabled {
		limiter = web.NewRateLimiter(rl.RPS, rl.Burst, rl.IdleTTL)
	}

	return &Dependencies{
		ProductService: pService,
		Logger:         logger,
		MetricsHandler: metricsHandler,
		RateLimiter:    limiter,
	}
}

// SetupHttpHandler initializes the routes and middleware for the ProductService application.
// Used by tests to drive the full HTTP stack without a listener.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	// tracing wraps the router so the span is already in the context for the request logger
	return otelhttp.NewHandler(mux, operationName,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// wireRoutes sets up the HTTP routes for the ProductService application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	if deps.MetricsHandler != nil {
		mux.Handle("/metrics", deps.MetricsHandler)
	}

	productHandler := rest.NewHandler(deps.ProductService, deps.Logger)
	mux.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware(deps.Logger))
		}
		productHandler.RegisterRoutes(r)
	})
}

// SetupHttpServer creates and configures an HTTP server for the ProductService application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps), deps.Logger)
}

// SetupGrpcServer initializes the gRPC server for the ProductService application.
// The returned health server lets the caller flip the serving status on shutdown.
func SetupGrpcServer(deps *Dependencies, reflectionEnabled bool) (*grpc.Server, *health.Server) {
	var healthServer *health.Server
	healthRegisterFunc := func(s *grpc.Server) {
		healthServer = server.NewHealthServer(s)
	}
	return server.NewGRPCServer(reflectionEnabled, deps.Logger, healthRegisterFunc), healthServer
}
