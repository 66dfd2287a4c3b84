package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/wellchat-api/app"
	"github.com/upb/wellchat-api/handlers"
	"github.com/upb/wellchat-api/internal/observability"
	"github.com/upb/wellchat-api/utils"
)

// Rate limit scopes
const (
	ScopeChat        = "chat"
	ScopePersonality = "personality"
	ScopeAdmin       = "admin"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(observability.HTTPMetricsMiddleware(deps.Metrics))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	health := handlers.NewHealthHandler(deps.HealthChecks, deps.Logger)
	r.Get("/health", health.HandleHealth)
	r.Get("/health/ready", health.HandleReadiness)

	if deps.Config.Observability.MetricsEnabled && deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", observability.Handler(deps.Registry))
	}

	me := handlers.NewMeHandler(deps.Users, deps.Logger)
	chat := handlers.NewChatHandler(deps.Chats, deps.Logger)
	personality := handlers.NewPersonalityHandler(deps.Personality, deps.Logger)
	limits := deps.Config.RateLimit
	limiter := deps.RateLimitMiddleware

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)

			r.Get("/me", me.HandleMe)

			r.With(limiter.Limit(ScopeChat, limits.ChatLimit, limits.DefaultWindow)).
				Post("/chat", chat.HandleCreate)

			r.With(limiter.Limit(ScopePersonality, limits.PersonalityLimit, limits.DefaultWindow)).
				Post("/personality", personality.HandleSubmit)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAdmin)
			r.Use(limiter.Limit(ScopeAdmin, limits.DefaultLimit, limits.DefaultWindow))

			r.Get("/personality", personality.HandleList)
			r.Put("/personality", personality.HandleUpdate)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}
