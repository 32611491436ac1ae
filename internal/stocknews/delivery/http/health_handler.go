package http

import (
	"context"
	"net/http"
	"time"

	"golang-stock-sentiment/internal/stocknews/dto"
	"golang-stock-sentiment/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Pinger checks a backing dependency.
type Pinger func(ctx context.Context) error

// HealthHandler reports liveness and database reachability.
type HealthHandler struct {
	dbPing Pinger
	logger *logger.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(dbPing Pinger, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{dbPing: dbPing, logger: logger}
}

// RegisterRoutes registers the health route to the Echo group.
func (h *HealthHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.GetHealth)
}

// GetHealth godoc
// @Summary Health check
// @Tags health
// @Produce  json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) GetHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if h.dbPing != nil {
		if err := h.dbPing(ctx); err != nil {
			h.logger.Warn("Database health check failed", logger.ErrorField(err))
			return c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "degraded", Database: "unreachable"})
		}
	}
	return c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Database: "ok"})
}
