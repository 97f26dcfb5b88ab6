package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xavierca1/voyage-leads/internal/infra/queue"
)

const healthCheckTimeout = 2 * time.Second

// StoreStatus reports the lead store health without opening it.
type StoreStatus interface {
	Status(ctx context.Context) string
}

type HealthHandler struct {
	Store           StoreStatus
	RabbitMQ        *queue.RabbitMQ
	Redis           *redis.Client
	GenAIConfigured bool
	Version         string
	StartTime       time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(store StoreStatus, rabbitMQ *queue.RabbitMQ, rdb *redis.Client, genAIConfigured bool, version string) *HealthHandler {
	return &HealthHandler{
		Store:           store,
		RabbitMQ:        rabbitMQ,
		Redis:           rdb,
		GenAIConfigured: genAIConfigured,
		Version:         version,
		StartTime:       time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	deps := make(map[string]string)

	deps["store"] = h.Store.Status(ctx)

	switch {
	case h.RabbitMQ == nil:
		deps["rabbitmq"] = "not configured"
	case h.RabbitMQ.Healthy():
		deps["rabbitmq"] = "healthy"
	default:
		deps["rabbitmq"] = "unhealthy: connection closed"
	}

	if h.Redis != nil {
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			deps["redis"] = "unhealthy: " + err.Error()
		} else {
			deps["redis"] = "healthy"
		}
	} else {
		deps["redis"] = "not configured"
	}

	if h.GenAIConfigured {
		deps["genai"] = "configured"
	} else {
		deps["genai"] = "not configured"
	}

	status := "healthy"
	for _, v := range deps {
		if strings.HasPrefix(v, "unhealthy") {
			status = "degraded"
			break
		}
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:       status,
		Version:      h.Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}
