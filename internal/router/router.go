// Package router sets up the HTTP routes and middleware chains of the
// admin API. Every entity route lives under /api and requires a session
// unless authentication is disabled.
package router

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"learnadmin/internal/entity"
	"learnadmin/internal/handlers"
	"learnadmin/internal/middleware"
)

// HealthCheck reports the health of a dependency.
type HealthCheck func(ctx context.Context) error

// Options carries the router dependencies. Sessions, LoginLimiter and
// Health may be nil. HSTS adds Strict-Transport-Security to every response.
type Options struct {
	API          *handlers.API
	Auth         *handlers.Auth
	Sessions     middleware.SessionGetter
	AuthRequired bool
	CORSOrigins  []string
	HSTS         bool
	LoginLimiter *middleware.RateLimiter
	Health       HealthCheck
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(opts.HSTS))
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders:   []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(middleware.LoadSession(opts.Sessions))

	// Health check, no auth.
	r.Get("/health", healthHandler(opts.Health))

	r.Route("/api", func(r chi.Router) {
		// Auth endpoints, accessible without a session.
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if opts.LoginLimiter != nil {
					r.Use(opts.LoginLimiter.Middleware)
				}
				r.Post("/login", opts.Auth.Login)
			})
			r.Post("/logout", opts.Auth.Logout)
			r.Get("/session", opts.Auth.Session)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(opts.AuthRequired))
			mountAPI(r, opts.API)
		})
	})

	return r
}

// mountAPI registers the entity routes.
func mountAPI(r chi.Router, api *handlers.API) {
	// Categories
	r.Route("/categories", func(r chi.Router) {
		def := entity.Category
		r.Get("/", api.List(def))
		r.Post("/", api.Create(def))
		r.Get("/active", api.ActiveList(def))
		r.Get("/count", api.Count(def))
		r.Get("/search", api.Search(def))
		r.Get("/{id}", api.Get(def))
		r.Put("/{id}", api.Update(def))
		r.Delete("/{id}", api.Delete(def))
		r.Patch("/{id}/toggle-status", api.Action(def, http.MethodPatch, "toggle-status", http.StatusOK, "Category status updated successfully"))
		r.Get("/{id}/subcategories", api.CategorySubcategories)
	})

	// Subcategories
	r.Route("/subcategories", func(r chi.Router) {
		def := entity.SubCategory
		r.Get("/", api.List(def))
		r.Post("/", api.Create(def))
		r.Get("/{id}", api.Get(def))
		r.Put("/{id}", api.Update(def))
		r.Delete("/{id}", api.Delete(def))
		r.Patch("/{id}/toggle-status", api.Action(def, http.MethodPatch, "toggle-status", http.StatusOK, "Subcategory status updated successfully"))
	})

	// Topics
	r.Route("/topics", func(r chi.Router) {
		def := entity.Topic
		r.Get("/", api.List(def))
		r.Post("/", api.Create(def, handlers.TopicSlug))
		r.Post("/bulk-delete", api.BulkDelete(def))
		r.Get("/search", api.Search(def))
		r.Get("/{id}", api.Get(def))
		r.Put("/{id}", api.Update(def, handlers.TopicSlug))
		r.Delete("/{id}", api.Delete(def))
		r.Post("/{id}/publish", api.Action(def, http.MethodPost, "publish", http.StatusOK, "Topic published successfully"))
		r.Patch("/{id}/toggle-featured", api.Action(def, http.MethodPatch, "toggle-featured", http.StatusOK, "Topic featured status updated successfully"))
		r.Post("/{id}/duplicate", api.Action(def, http.MethodPost, "duplicate", http.StatusCreated, "Topic duplicated successfully"))
	})

	// Legal documents
	for path, def := range map[string]*entity.Definition{
		"/terms":            entity.Terms,
		"/privacy-policies": entity.PrivacyPolicy,
	} {
		r.Route(path, func(r chi.Router) {
			r.Get("/", api.List(def))
			r.Post("/", api.Create(def))
			r.Get("/active", api.ActiveDocument(def))
			r.Post("/preview", api.DraftPreview)
			r.Get("/{id}", api.Get(def))
			r.Put("/{id}", api.Update(def))
			r.Delete("/{id}", api.Delete(def))
			r.Post("/{id}/publish", api.Action(def, http.MethodPost, "publish", http.StatusOK, def.Label+" published successfully"))
			r.Get("/{id}/preview", api.Preview(def))
		})
	}

	// Homepage
	r.Get("/homepage", api.Get(entity.Homepage))
	r.Put("/homepage", api.Update(entity.Homepage))

	// FAQs
	r.Route("/faqs", func(r chi.Router) {
		def := entity.FAQ
		r.Get("/", api.List(def))
		r.Post("/", api.Create(def))
		r.Get("/{id}", api.Get(def))
		r.Put("/{id}", api.Update(def))
		r.Delete("/{id}", api.Delete(def))
	})

	// Media
	r.Post("/uploads", api.Upload)
	r.Delete("/uploads", api.DeleteUpload)

	// Form schemas
	r.Get("/schemas", handlers.Schemas)
	r.Get("/schemas/{entity}", handlers.Schema)
}

// healthHandler reports service health, including the session store when
// one is configured.
func healthHandler(check HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}

		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				slog.Warn("health check failed", "error", err)
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body["valkey"] = "unreachable"
			} else {
				body["valkey"] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}
