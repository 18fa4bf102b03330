package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/medportal/medportal/internal/metrics"
	"github.com/medportal/medportal/internal/middleware"
)

// RouterConfig wires handlers and middleware into the HTTP router.
type RouterConfig struct {
	Logger  *slog.Logger
	Auth    *AuthHandler
	Health  *HealthHandler
	Metrics *MetricsHandler
	// Events is mounted at /api/events when non-nil.
	Events *EventsHandler

	// Limiter enables the per-IP limit on the auth endpoints when non-nil.
	Limiter  middleware.Limiter
	Recorder metrics.Recorder

	CORS         middleware.CORSConfig
	Development  bool
	MaxBodyBytes int64
}

// NewRouter builds the chi router for the API. cfg.Auth is required.
func NewRouter(cfg RouterConfig) *chi.Mux {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	h := New()
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.Development}))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.MaxBodyBytes > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxBodyBytes))
	}

	r.Get("/", h.Index)
	if cfg.Health != nil {
		r.Get("/healthz", cfg.Health.Healthz)
		r.Get("/readyz", cfg.Health.Readyz)
	}
	if cfg.Metrics != nil {
		r.Get("/metrics", cfg.Metrics.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.Limiter != nil {
				r.Use(middleware.RateLimitAuth(middleware.RateLimitConfig{
					Limiter: cfg.Limiter,
					Logger:  cfg.Logger,
					Metrics: cfg.Recorder,
				}))
			}
			r.Post("/login", cfg.Auth.Login)
			r.Post("/signup", cfg.Auth.Signup)
		})

		if cfg.Events != nil {
			r.Get("/events", cfg.Events.List)
		}
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
