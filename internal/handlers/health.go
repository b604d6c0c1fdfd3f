package handlers

import (
	"github.com/custodia-app/custodia/internal/config"
	"github.com/custodia-app/custodia/internal/services"
	"github.com/custodia-app/custodia/internal/storage"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthHandler handles the health route
type HealthHandler struct {
	Cfg   *config.Config
	DB    *gorm.DB
	Store *storage.BlobStore
}

// GetHealth handles GET /api/health
// @Summary Service health
// @Description Database ping and blob store writability probe
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *fiber.Ctx) error {
	result := services.HealthCheck(h.Cfg, h.DB, h.Store)
	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
