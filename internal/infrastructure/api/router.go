package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"seoforge/internal/config"
	"seoforge/internal/infrastructure/middleware"
	"seoforge/internal/pkg/session"
)

// NewRouter assembles the HTTP surface: public health and metrics, the
// session mint endpoint, and the authenticated API.
func NewRouter(h *Handler, signer *session.Signer, cfg *config.Config, logger zerolog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AppURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Method("GET", "/metrics", promhttp.Handler())
	r.Post("/api/auth/session", h.MintSession)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(signer, logger))

		r.Get("/api/shopify/auth", h.BeginOAuth)
		r.Get("/api/shopify/callback", h.OAuthCallback)
		r.Get("/api/shopify/status", h.ConnectionStatus)
		r.Post("/api/shopify/disconnect", h.Disconnect)

		r.Post("/api/store/sync", h.SyncCatalog)

		r.Post("/api/keywords/seed", h.SeedKeywords)
		r.Get("/api/keywords/list", h.ListKeywords)
		r.Post("/api/keywords/cleanup-duplicates", h.CleanupDuplicateKeywords)

		r.Post("/api/content/generate", h.GenerateContent)
		r.Post("/api/content/publish", h.PublishContent)

		r.Get("/api/pages/list", h.ListPages)
	})

	return r
}
