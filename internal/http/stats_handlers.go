package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	rcache "github.com/open-builders/satchat-backend/internal/cache/redis"
	apperrors "github.com/open-builders/satchat-backend/internal/common/errors"
	"github.com/open-builders/satchat-backend/internal/common/middleware"
)

type StatsHandlers struct {
	stats    StatsReader
	dailyCap func() int64
}

// NewStatsHandlers reads the cap through dailyCap on every request so runtime
// changes show up at once.
func NewStatsHandlers(stats StatsReader, dailyCap func() int64) *StatsHandlers {
	return &StatsHandlers{stats: stats, dailyCap: dailyCap}
}

func (h *StatsHandlers) RegisterRoutes(router gin.IRoutes) {
	router.GET("/stats/today", h.today)
}

type TodayStatsResponse struct {
	rcache.DaySnapshot
	DailyCap  int64 `json:"daily_cap"`
	Remaining int64 `json:"remaining,omitempty"`
}

// @Summary Today's reward activity
// @Tags stats
// @Produce json
// @Success 200 {object} TodayStatsResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /api/v1/stats/today [get]
func (h *StatsHandlers) today(c *gin.Context) {
	if h.stats == nil {
		middleware.RespondError(c, apperrors.New(apperrors.ErrCodeCacheError, "Daily stats are not available"))
		return
	}
	snap, err := h.stats.Today(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "Failed to read daily stats"))
		return
	}
	limit := h.dailyCap()
	resp := TodayStatsResponse{DaySnapshot: *snap, DailyCap: limit}
	if limit > 0 {
		resp.Remaining = max(limit-snap.Distributed, 0)
	}
	c.JSON(http.StatusOK, resp)
}
