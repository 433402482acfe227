package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"linguaflow/internal/handlers"
	"linguaflow/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Service        service.TranslationService
	Health         *handlers.HealthHandler
	MaxUploadBytes int64
	// RateLimit is the per-client request rate; 0 disables limiting.
	RateLimit float64
	RateBurst int
	// TrustProxy rewrites the client address from proxy headers. Without it
	// the rate limiter keys on the connection's peer address.
	TrustProxy bool
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if deps.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	health := deps.Health
	if health == nil {
		health = handlers.NewHealthHandler(nil, nil)
	}

	translate := handlers.NewTranslateHandler(deps.Service, deps.MaxUploadBytes)
	files := handlers.NewFileHandler(deps.Service, deps.MaxUploadBytes)
	chunks := handlers.NewChunksHandler(deps.Service, deps.MaxUploadBytes)
	history := handlers.NewTranslationsHandler(deps.Service)
	admin := handlers.NewAdminHandler(deps.Service)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", health)
		r.Get("/languages", admin.Languages)

		r.Group(func(r chi.Router) {
			if deps.RateLimit > 0 {
				r.Use(NewRateLimiter(deps.RateLimit, deps.RateBurst).Middleware)
			}
			r.Method(http.MethodPost, "/translate", translate)
			r.Method(http.MethodPost, "/files", files)
			r.Method(http.MethodPost, "/chunks", chunks)

			r.Get("/translations", history.List)
			r.Get("/translations/{id}", history.Get)
			r.Delete("/translations/{id}", history.Delete)

			r.Get("/admin/stats", admin.Stats)
		})
	})

	return r
}
