package routes

import (
	"github.com/go-chi/chi/v5"
	"wohee/vodtracker/internal/api"
	"wohee/vodtracker/internal/middleware"
)

// RegisterAPIRoutes registers the /api tree. Every route is rate limited;
// data routes need a session and at least one roster capability.
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, deps *api.Dependencies) {
	limiter := middleware.NewRateLimiter(deps.Config.HTTP.RateLimitMax, deps.Config.HTTP.RateLimitWindow, deps.Metrics)
	requireSession := middleware.AuthMiddleware(deps.Signer, deps.Cookies(), deps.Metrics)

	r.Route("/api", func(apiRouter chi.Router) {
		apiRouter.Use(limiter.Middleware)

		// Public
		apiRouter.Post("/auth/discord/callback", handlers.DiscordCallback())
		apiRouter.Post("/auth/logout", handlers.Logout())

		apiRouter.Group(func(session chi.Router) {
			session.Use(requireSession)
			session.Get("/auth/verify", handlers.VerifySession())

			// Roster group (master or any weapon lead)
			session.Group(func(roster chi.Router) {
				roster.Use(middleware.RequireAnyAccess(deps.Authz, deps.Metrics))

				roster.Get("/all-data", handlers.AllData())
				roster.Get("/vod-tracking", handlers.VodTracking())
				roster.Get("/statics", handlers.ListStatics())

				// per-loadout permission is checked against the member record
				roster.Post("/vod-update", handlers.VodUpdate())

				roster.Group(func(master chi.Router) {
					master.Use(middleware.RequireMaster(deps.Authz, deps.Metrics))
					master.Post("/statics/update", handlers.UpdateStatic())
				})

				roster.Group(func(leadership chi.Router) {
					leadership.Use(middleware.RequireLeadership(deps.Authz, deps.Metrics))
					leadership.Post("/statics/discord-webhook", handlers.PublishStatics())
				})
			})
		})
	})
}
