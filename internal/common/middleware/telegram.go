package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"github.com/open-builders/satchat-backend/internal/common/errors"
	"github.com/open-builders/satchat-backend/internal/common/logger"
)

const (
	InitDataHeader = "X-Telegram-Init-Data"
	userKey        = "user"
)

// TelegramInitData validates Mini App init-data from the X-Telegram-Init-Data
// header (or the init_data query parameter) and stores the Telegram user.
// expIn 0 disables the expiration check.
func TelegramInitData(token string, expIn time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(InitDataHeader)
		if raw == "" {
			raw = c.Query("init_data")
		}
		if raw == "" {
			RespondError(c, errors.NewUnauthorizedError("Telegram init data required"))
			return
		}

		if err := initdata.Validate(raw, token, expIn); err != nil {
			logger.Debug().Err(err).Msg("Init data validation failed")
			RespondError(c, errors.NewUnauthorizedError("invalid init data"))
			return
		}

		parsed, err := initdata.Parse(raw)
		if err != nil || parsed.User.ID == 0 {
			RespondError(c, errors.New(errors.ErrCodeBadRequest, "Init data carries no user"))
			return
		}

		c.Set(userKey, parsed.User)
		c.Set(userIDKey, parsed.User.ID)
		c.Next()
	}
}

// TelegramUser returns the user stored by TelegramInitData.
func TelegramUser(c *gin.Context) (initdata.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return initdata.User{}, false
	}
	u, ok := v.(initdata.User)
	return u, ok
}

// UserID returns the authenticated Telegram user id, 0 when absent.
func UserID(c *gin.Context) int64 { return getUserID(c) }
