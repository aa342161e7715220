package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    Pinger
	redis       Pinger
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres, redis Pinger) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports readiness. Only Postgres fails the probe; Redis errors are reported.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	deps := fiber.Map{"postgres": "ok", "redis": "ok"}
	ready := true

	if err := h.postgres.Ping(ctx); err != nil {
		deps["postgres"] = err.Error()
		ready = false
	}
	if err := h.redis.Ping(ctx); err != nil {
		deps["redis"] = err.Error()
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": deps,
		})
	}
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"title":   "Service unavailable",
			"message": "one or more dependencies unavailable",
		},
		"status":       fiber.StatusServiceUnavailable,
		"dependencies": deps,
	})
}
