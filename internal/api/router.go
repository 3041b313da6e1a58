package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/chatter-api/chatter/internal/api/middleware"
	"github.com/chatter-api/chatter/internal/handlers"
	"github.com/chatter-api/chatter/internal/store"
)

// RouterConfig carries the router's optional knobs.
type RouterConfig struct {
	RateLimitWhitelist []string
}

// NewRouter creates and configures the HTTP router. The Redis client may
// be nil, which disables rate limiting.
func NewRouter(logger zerolog.Logger, dataStore store.DataStore, redisClient *redis.Client, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(8 * 1024)) // 8KB max body
	r.Use(middleware.RequireJSON)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting (no-op without Redis)
	limiter := middleware.NewRateLimiter(redisClient, logger, middleware.RateLimiterConfig{
		Whitelist: cfg.RateLimitWhitelist,
	})
	r.Use(limiter.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := handlers.NewHandler(dataStore, redisClient, logger)

	// Operational endpoints
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)

	// Accounts
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Get("/accounts/{id}/messages", h.GetMessagesByAccount)

	// Messages
	r.Route("/messages", func(r chi.Router) {
		r.Post("/", h.CreateMessage)
		r.Get("/", h.GetAllMessages)
		r.Get("/{id}", h.GetMessageByID)
		r.Delete("/{id}", h.DeleteMessage)
		r.Patch("/{id}", h.UpdateMessage)
	})

	return r
}
