package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/open-builders/satchat-backend/internal/common/errors"
	"github.com/open-builders/satchat-backend/internal/common/logger"
)

const (
	requestIDKey = "request_id"
	userIDKey    = "user_id"
)

// ErrorHandler recovers panics and answers with an INTERNAL_ERROR body.
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().
			Str("request_id", getRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("panic", fmt.Sprintf("%v", recovered)).
			Str("stack", string(debug.Stack())).
			Msg("Panic recovered")

		RespondError(c, errors.New(errors.ErrCodeInternal, "Internal server error"))
	})
}

// RequestID propagates X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Success   bool             `json:"success"`
	Error     *errors.AppError `json:"error"`
	Timestamp time.Time        `json:"timestamp"`
	RequestID string           `json:"request_id"`
	Path      string           `json:"path,omitempty"`
	Method    string           `json:"method,omitempty"`
}

// RespondError aborts the request with the status mapped from the error code.
// Errors outside the taxonomy become INTERNAL_ERROR.
func RespondError(c *gin.Context, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.Wrap(err, errors.ErrCodeInternal, "Internal server error").WithStack()
	}
	requestID := getRequestID(c)
	appErr.WithRequestID(requestID)

	logError(appErr, c)

	c.AbortWithStatusJSON(HTTPStatus(appErr.Code), ErrorResponse{
		Success:   false,
		Error:     appErr,
		Timestamp: time.Now(),
		RequestID: requestID,
		Path:      c.Request.URL.Path,
		Method:    c.Request.Method,
	})
}

// HTTPStatus maps an error code to a response status.
func HTTPStatus(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeValidation, errors.ErrCodeBadRequest, errors.ErrCodeInvalidWalletFormat, errors.ErrCodeInvalidKeyword:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeAccountNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeForbidden:
		return http.StatusForbidden
	case errors.ErrCodeNoWalletLinked, errors.ErrCodeZeroBalance, errors.ErrCodeBelowMinimum:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeDailyCapReached:
		return http.StatusTooManyRequests
	case errors.ErrCodeCacheError:
		return http.StatusServiceUnavailable
	case errors.ErrCodeTelegramAPI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func logError(appErr *errors.AppError, c *gin.Context) {
	var ev *zerolog.Event
	switch {
	case appErr.IsInternal():
		ev = logger.Error()
	case appErr.Code == errors.ErrCodeUnauthorized || appErr.Code == errors.ErrCodeForbidden:
		ev = logger.Warn()
	default:
		ev = logger.Info()
	}
	ev = ev.
		Str("request_id", getRequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("error_code", string(appErr.Code)).
		Str("error_message", appErr.Message)
	if userID := getUserID(c); userID != 0 {
		ev = ev.Int64("user_id", userID)
	}
	if len(appErr.Details) > 0 {
		ev = ev.Interface("details", appErr.Details)
	}
	if appErr.Cause != nil {
		ev = ev.AnErr("cause", appErr.Cause)
	}
	if len(appErr.Stack) > 0 {
		ev = ev.Strs("stack", appErr.Stack)
	}
	ev.Msg("Request failed")
}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	return "unknown"
}

func getUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}
