package handler

import (
	"context"
	"time"

	"smartmatch/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	service string
	cache   Pinger
	db      Pinger
}

func NewHealthHandler(service string, cache, db Pinger) *HealthHandler {
	return &HealthHandler{service: service, cache: cache, db: db}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	deps := map[string]string{}
	healthy := true

	if h.cache != nil {
		deps["cache"] = pingStatus(h.cache.Ping(ctx))
	}
	if h.db != nil {
		status := pingStatus(h.db.Ping(ctx))
		deps["database"] = status
		if status != "up" {
			healthy = false
		}
	}

	data := map[string]any{
		"service":      h.service,
		"dependencies": deps,
	}

	// A cold cache degrades performance but not correctness, so only the
	// database gates the status code.
	if !healthy {
		return response.Error(c, fiber.StatusServiceUnavailable, "degraded", data)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, data)
}

func pingStatus(err error) string {
	if err != nil {
		return "down"
	}
	return "up"
}
