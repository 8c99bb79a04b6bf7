package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/AverniteDF/poe-bot-server-wsgi/internal/handlers"
	"github.com/AverniteDF/poe-bot-server-wsgi/internal/middleware"
)

func New(
	auth *middleware.AccessKeyAuth,
	webhookHandler *handlers.WebhookHandler,
	rateLimitPerMinute int,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger)

	webhookLimiter := middleware.NewRateLimiter(rateLimitPerMinute, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Deployment check page
	r.Get("/", webhookHandler.Status)

	// The platform webhook
	r.Group(func(r chi.Router) {
		r.Use(webhookLimiter.Middleware)
		r.Use(middleware.RequireJSON)
		r.Use(auth.Middleware)
		r.Post("/", webhookHandler.Handle)
	})

	return r
}
