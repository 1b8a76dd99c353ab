package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/open-builders/satchat-backend/internal/common/errors"
	"github.com/open-builders/satchat-backend/internal/common/logger"
	"github.com/open-builders/satchat-backend/internal/common/middleware"
	"github.com/open-builders/satchat-backend/internal/service/telegram"
)

const webhookSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler receives Bot API updates pushed by Telegram.
type WebhookHandler struct {
	sink   UpdateSink
	secret string
}

func NewWebhookHandler(sink UpdateSink, secret string) *WebhookHandler {
	return &WebhookHandler{sink: sink, secret: secret}
}

func (h *WebhookHandler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/telegram/webhook", h.receive)
}

// @Summary Telegram webhook
// @Description Accepts a Bot API update. The secret token header must match WEBHOOK_SECRET.
// @Tags telegram
// @Accept json
// @Produce json
// @Param X-Telegram-Bot-Api-Secret-Token header string true "Webhook secret"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /telegram/webhook [post]
func (h *WebhookHandler) receive(c *gin.Context) {
	got := c.GetHeader(webhookSecretHeader)
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		middleware.RespondError(c, apperrors.NewUnauthorizedError("invalid webhook secret"))
		return
	}

	var u telegram.Update
	if err := c.ShouldBindJSON(&u); err != nil {
		middleware.RespondError(c, apperrors.New(apperrors.ErrCodeBadRequest, "Invalid update payload"))
		return
	}

	if err := h.sink(c.Request.Context(), u); err != nil {
		// Telegram retries non-2xx responses.
		logger.Error().Err(err).Int64("update_id", u.UpdateID).Msg("Failed to enqueue update")
		middleware.RespondError(c, apperrors.Wrap(err, apperrors.ErrCodeCacheError, "Failed to enqueue update"))
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}
