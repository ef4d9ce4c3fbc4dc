package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"storefront/internal/cache"
	"storefront/internal/db"
)

// HealthHandler reports liveness and the state of the backing stores.
type HealthHandler struct {
	db    *gorm.DB
	cache *cache.Client
}

// NewHealthHandler creates a new health handler. cacheClient may be nil.
func NewHealthHandler(gormDB *gorm.DB, cacheClient *cache.Client) *HealthHandler {
	return &HealthHandler{db: gormDB, cache: cacheClient}
}

// HealthResponse is the health check body.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	DB      string `json:"db"`
	Cache   string `json:"cache"`
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	code := http.StatusOK
	resp := HealthResponse{Status: "OK", Message: "Server is running", DB: "up", Cache: "up"}
	if err := db.Ping(ctx, h.db); err != nil {
		slog.WarnContext(ctx, "health check: database unreachable", "error", err)
		code = http.StatusServiceUnavailable
		resp.Status = "ERROR"
		resp.Message = "Database unavailable"
		resp.DB = "down"
	}
	// the cache fails open, so a missing redis degrades but does not fail the check
	if err := h.cache.Ping(ctx); err != nil {
		resp.Cache = "down"
	}
	return c.JSON(code, resp)
}
