package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/matchroute-service/internal/usecase/dto"
)

// HealthChecker - зависимость, состояние которой попадает в /health
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler - проверка состояния сервиса
type HealthHandler struct {
	checkers map[string]HealthChecker
}

func NewHealthHandler(checkers map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{checkers: checkers}
}

// Health godoc
// @Summary Проверка состояния
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /api/v1/health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{
		Status:   "healthy",
		Services: make(map[string]string, len(h.checkers)),
	}
	status := fiber.StatusOK

	for name, checker := range h.checkers {
		if err := checker.Health(ctx); err != nil {
			resp.Services[name] = "unhealthy: " + err.Error()
			resp.Status = "degraded"
			status = fiber.StatusServiceUnavailable
			continue
		}
		resp.Services[name] = "healthy"
	}

	return c.Status(status).JSON(resp)
}
