package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/fleet/internal/handler"
	"github.com/DukeRupert/fleet/internal/metrics"
	"github.com/DukeRupert/fleet/internal/middleware"
	"github.com/DukeRupert/fleet/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// pinger is satisfied by *sql.DB.
type pinger interface {
	PingContext(ctx context.Context) error
}

type routerDeps struct {
	logger            *slog.Logger
	db                pinger
	inspectionService service.InspectionService
	vehicleService    service.VehicleService
	metricsAuth       *middleware.BasicAuthMiddleware
	writeLimiter      *middleware.RateLimiter // nil disables write limiting
	requestTimeout    time.Duration
	isSecure          bool
}

// newRouter registers every route and wraps the mux in the middleware stack.
func newRouter(deps routerDeps) http.Handler {
	mux := http.NewServeMux()

	// Liveness
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Readiness: the database must answer
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.db.PingContext(r.Context()); err != nil {
			deps.logger.Warn("readiness check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.Handle("GET /metrics", deps.metricsAuth.Handler(promhttp.Handler()))

	handler.NewInspectionHandler(deps.inspectionService, deps.logger).RegisterRoutes(mux)
	handler.NewVehicleHandler(deps.vehicleService, deps.logger).RegisterRoutes(mux)

	stack := []func(http.Handler) http.Handler{
		metrics.Middleware,
		middleware.NewRequestLoggingMiddleware(deps.logger).Handler,
		middleware.NewSecurityHeadersMiddleware(deps.isSecure).Handler,
		middleware.WithCaller,
	}
	if deps.writeLimiter != nil {
		stack = append(stack, middleware.NewRateLimitMiddleware(deps.writeLimiter, deps.logger).Limit)
	}
	stack = append(stack, middleware.Timeout(deps.requestTimeout))

	return middleware.Stack(stack...)(mux)
}
