package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	rplatform "github.com/open-builders/satchat-backend/internal/platform/redis"
)

type HealthHandlers struct {
	db    Pinger
	redis *rplatform.Client
}

func NewHealthHandlers(db Pinger, redis *rplatform.Client) *HealthHandlers {
	return &HealthHandlers{db: db, redis: redis}
}

func (h *HealthHandlers) RegisterRoutes(router gin.IRoutes) {
	router.GET("/health", h.live)
	router.GET("/live", h.live)
	router.GET("/ready", h.ready)
}

// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /health [get]
func (h *HealthHandlers) live(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// @Summary Readiness probe
// @Description Checks Postgres and Redis connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 503 {object} StatusResponse
// @Router /ready [get]
func (h *HealthHandlers) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true
	if h.db != nil {
		checks["postgres"] = "ok"
		if err := h.db.PingContext(ctx); err != nil {
			checks["postgres"] = err.Error()
			healthy = false
		}
	}
	if h.redis != nil {
		checks["redis"] = "ok"
		if err := h.redis.HealthCheck(ctx); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		}
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "unavailable", Checks: checks})
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "ok", Checks: checks})
}
