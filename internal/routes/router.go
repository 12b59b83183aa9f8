package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"wohee/vodtracker/internal/api"
	"wohee/vodtracker/internal/logging"
	"wohee/vodtracker/internal/middleware"
)

// RegisterRoutes builds the chi router with the global middleware stack.
func RegisterRoutes(deps *api.Dependencies) http.Handler {
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.Logging)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.HTTP.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	handlers := api.NewHandlers(deps)

	// health check
	r.Get("/healthCheck", handlers.HealthCheckHandler())

	RegisterAPIRoutes(r, handlers, deps)

	logging.Info("Router initialized", "cors_origins", deps.Config.HTTP.CORSOrigins)
	return r
}
