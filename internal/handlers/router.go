package handlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterOptions configures the middleware stack.
type RouterOptions struct {
	AllowedOrigins     []string
	RateLimitPerSecond float64
	RateLimitBurst     int
	Logger             *zap.Logger
}

// NewRouter mounts the API, probes and metrics.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(Logging(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if opts.RateLimitPerSecond > 0 {
			r.Use(h.RateLimit(opts.RateLimitPerSecond, opts.RateLimitBurst))
		}
		r.Post("/agent/commands", h.ProcessCommand)
		r.Get("/agent/status", h.GetAgentStatus)
		r.Get("/users/{userId}/recommendations", h.GetUserRecommendations)
	})

	return r
}
