package handlers

import (
	"physiohub-gateway/internal/config"
	"physiohub-gateway/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	sessionService *services.SessionService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(sessionService *services.SessionService) *HealthHandler {
	return &HealthHandler{sessionService: sessionService}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns gateway status
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "🚀 PhysioHub Session Gateway is running",
		"mode":    config.AppConfig.AppMode,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck handles health check
// @Summary Health check
// @Description Check gateway and session-store health
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	storeStatus := "healthy"
	if err := config.HealthCheck(); err != nil {
		storeStatus = "unhealthy"
	}

	liveSessions, err := h.sessionService.CountLive(c.Context())
	if err != nil {
		storeStatus = "unhealthy"
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"checks": fiber.Map{
			"api":           "healthy",
			"session_store": storeStatus,
		},
		"live_sessions": liveSessions,
	})
}

// APIInfo handles API v1 info
func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "PhysioHub Session Gateway API",
		"version": "1.0.0",
	})
}
