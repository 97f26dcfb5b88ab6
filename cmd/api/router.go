package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xavierca1/voyage-leads/internal/infra/http/handlers"
	"github.com/xavierca1/voyage-leads/internal/infra/http/middleware"
)

type routes struct {
	Webhook     *handlers.WebhookHandler
	Leads       *handlers.LeadHandler
	Enrichment  *handlers.EnrichmentHandler
	Chat        *handlers.ChatHandler
	Health      *handlers.HealthHandler
	ChatLimiter *middleware.RateLimiter
}

func newRouter(h routes, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeRouterError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeRouterError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", h.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(60 * time.Second))

		// Every method reaches the handler so it can answer 405 itself.
		r.HandleFunc("/elevenlabs/post-call", h.Webhook.Handle)

		r.Get("/leads", h.Leads.List)
		r.Get("/leads/stats", h.Leads.Stats)
		r.Post("/leads/summary", h.Enrichment.Summary)
		r.Post("/leads/score", h.Enrichment.Score)
		r.Patch("/leads/{id}/enrichment", h.Enrichment.Persist)

		r.With(h.ChatLimiter.Limit).Post("/chat", h.Chat.Handle)
	})

	return r
}

func writeRouterError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
