package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"easy-website/config"
)

// NewRouter creates and configures a Chi router with all routes
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(cfg.HTTP.RequestTimeoutSec) * time.Second))
	r.Use(corsMiddleware(cfg.HTTP.CORSAllowedOrigins))
	r.Use(metricsMiddleware)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.handleLogin)
			r.Post("/refresh", h.handleRefresh)
			r.Post("/logout", h.handleLogout)

			r.Group(func(r chi.Router) {
				r.Use(h.authMiddleware)
				r.Get("/check", h.handleCheck)
				r.Get("/profile", h.handleGetProfile)
				r.Put("/profile", h.handleUpdateProfile)

				r.With(h.requireAdmin).Get("/activity", h.handleListActivity)
			})
		})

		r.Route("/ai", func(r chi.Router) {
			r.Use(h.authMiddleware)

			r.Group(func(r chi.Router) {
				r.Use(h.requireEditor)
				r.Post("/generate", h.handleGenerate)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Use(h.requireAdmin)
				r.Get("/", h.handleGetSettings)
				r.Put("/", h.handleUpsertSettings)
				r.Post("/test", h.handleTestProvider)
				r.Post("/profiles", h.handleCreateProfile)
				r.Put("/profiles/{id}", h.handleUpdateProviderProfile)
				r.Delete("/profiles/{id}", h.handleDeleteProfile)
				r.Post("/default/{id}", h.handleSetDefaultProfile)
			})

			r.Route("/templates", func(r chi.Router) {
				r.Use(h.requireAdmin)
				r.Get("/{id}", h.handleGetTemplate)
				r.Post("/", h.handleCreateTemplate)
				r.Put("/{id}", h.handleUpdateTemplate)
				r.Delete("/{id}", h.handleDeleteTemplate)
			})
		})
	})

	return r
}
