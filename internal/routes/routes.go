package routes

import (
	"log/slog"

	"github.com/bitleap/linkauth/internal/auth"
	"github.com/bitleap/linkauth/internal/handlers"
	"github.com/bitleap/linkauth/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	accountHandler *handlers.AccountHandler,
	authorizer auth.Authorizer,
	logger *slog.Logger,
) {
	// Rate limiting config for unauthenticated auth endpoints
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public routes - no authentication required
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/register", authHandler.Register)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", authHandler.Login)

	// Protected routes - bearer token required
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(authorizer))

		r.Get("/auth/me", authHandler.Me)
		r.Post("/auth/logout", authHandler.Logout)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdminRole(logger))
			r.Get("/admin/accounts", accountHandler.ListAccounts)
			r.Get("/admin/accounts/{id}", accountHandler.GetAccount)
			r.Patch("/admin/accounts/{id}", accountHandler.UpdateAccount)
			r.Delete("/admin/accounts/{id}", accountHandler.DeleteAccount)
			r.Get("/admin/stats", accountHandler.Stats)
		})
	})
}
