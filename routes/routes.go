package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/llm-control-plane/dashboard/app"
	"github.com/upb/llm-control-plane/dashboard/middleware"
	"github.com/upb/llm-control-plane/dashboard/utils"
)

// SetupRoutes configures all application routes and middleware.
// The route guard runs for every request before any handler is selected.
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.ErrorBoundary(deps.Logger, deps.Pages.HandleError))
	r.Use(chimw.Timeout(60 * time.Second))

	// Session presence gate, then prefetch hints for pages that render
	r.Use(deps.Guard.Handler)
	r.Use(deps.Prefetch.Handler)

	// Health check endpoints
	r.Get("/healthz", deps.Health.HandleHealth)
	r.Get("/readyz", deps.Health.HandleReadiness)

	// OAuth2 auth endpoints (Cognito)
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", deps.Auth.HandleLogin)
		r.Get("/callback", deps.Auth.HandleCallback)
		r.Get("/logout", deps.Auth.HandleLogout)
	})
	// Cognito Hosted UI default callback path (also used by /auth/callback)
	r.Get("/oauth2/idpresponse", deps.Auth.HandleCallback)

	// JSON API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.Use(deps.Shells.LoadShell)

		r.Get("/me", deps.Me.HandleMe)

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			_ = utils.WriteNotFound(w, r, "")
		})
	})

	// HTML pages
	r.Group(func(r chi.Router) {
		r.Use(deps.Shells.LoadShell)

		r.Get("/", deps.Pages.HandleLanding)
		r.Get("/login", deps.Pages.HandleLogin)

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/", deps.Pages.HandleOverview)
			r.Get("/billing", deps.Pages.HandleBilling)
			r.Get("/settings", deps.Pages.HandleSettings)
			r.With(deps.Shells.RequireAdmin(http.HandlerFunc(deps.Pages.HandleForbidden))).
				Get("/admin", deps.Pages.HandleAdmin)
		})
	})

	// 404 handler
	r.NotFound(deps.Shells.LoadShell(http.HandlerFunc(deps.Pages.HandleNotFound)).ServeHTTP)

	return r
}
