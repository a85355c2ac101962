package main

import (
	"net/http"

	"go.uber.org/zap"

	httphandlers "finsync/internal/interfaces/http"
	"finsync/internal/shared/config"
	"finsync/internal/shared/middleware"
)

// SetupRoutes builds the router with the global middleware chain.
func SetupRoutes(deps *Dependencies, cfg *config.Config, log *zap.Logger) http.Handler {
	return httphandlers.NewRouter(deps.Handlers,
		middleware.Telemetry,
		middleware.Tracing,
		middleware.Logging(log),
		middleware.CORS(cfg.Server.AllowedOrigins),
	)
}
