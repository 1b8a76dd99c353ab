package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/open-builders/satchat-backend/internal/common/errors"
	"github.com/open-builders/satchat-backend/internal/domain/account"
)

// RequireAdmin lets through users for which isAdmin returns true.
func RequireAdmin(isAdmin func(userID int64) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := TelegramUser(c)
		if !ok {
			RespondError(c, errors.NewUnauthorizedError("Telegram init data required"))
			return
		}
		if !isAdmin(user.ID) {
			RespondError(c, errors.NewForbiddenError("admin access required"))
			return
		}
		c.Next()
	}
}

// AccountStarter creates accounts on first contact.
type AccountStarter interface {
	Start(ctx context.Context, p account.Profile) (*account.Account, bool, error)
}

// AutoCreateAccount creates or refreshes the account of the authenticated user.
func AutoCreateAccount(accounts AccountStarter) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := TelegramUser(c)
		if !ok {
			c.Next()
			return
		}
		_, _, err := accounts.Start(c.Request.Context(), account.Profile{
			ID:        user.ID,
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
		})
		if err != nil {
			RespondError(c, err)
			return
		}
		c.Next()
	}
}
