package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db          *gorm.DB
	redisClient *redis.Client
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
	}
}

// GET /health
//
// Redis being down degrades latency but not correctness, so it reports
// "degraded" rather than failing the check.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]string{
		"status":   "ok",
		"database": "ok",
		"cache":    "ok",
	}

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		body["status"] = "unhealthy"
		body["database"] = "down"
		status = http.StatusServiceUnavailable
	}

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		body["cache"] = "down"
		if body["status"] == "ok" {
			body["status"] = "degraded"
		}
	}

	return c.JSON(status, body)
}
