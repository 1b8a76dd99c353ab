package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode identifies a failure kind that callers can branch on.
type ErrorCode string

const (
	// General
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"

	// Accounts and rewards
	ErrCodeAccountNotFound     ErrorCode = "ACCOUNT_NOT_FOUND"
	ErrCodeInvalidWalletFormat ErrorCode = "INVALID_WALLET_FORMAT"
	ErrCodeRewardCreditFailed  ErrorCode = "REWARD_CREDIT_FAILED"
	ErrCodeDailyCapReached     ErrorCode = "DAILY_CAP_REACHED"
	ErrCodeInvalidKeyword      ErrorCode = "INVALID_KEYWORD"

	// Claims
	ErrCodeNoWalletLinked ErrorCode = "NO_WALLET_LINKED"
	ErrCodeZeroBalance    ErrorCode = "ZERO_BALANCE"
	ErrCodeBelowMinimum   ErrorCode = "BELOW_MINIMUM"
	ErrCodeClaimFailed    ErrorCode = "CLAIM_FAILED"

	// Infrastructure
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	ErrCodeCacheError    ErrorCode = "CACHE_ERROR"
	ErrCodeTelegramAPI   ErrorCode = "TELEGRAM_API_ERROR"
)

// AppError is a typed application error.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Stack     []string               `json:"-"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	UserID    int64                  `json:"user_id,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another *AppError by code so errors.Is works with the sentinels below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// IsNotFound reports whether the error is a "not found" kind.
func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound || e.Code == ErrCodeAccountNotFound
}

// IsValidation reports whether the error is caused by user input or account state.
// Retrying makes no sense until the user changes something.
func (e *AppError) IsValidation() bool {
	switch e.Code {
	case ErrCodeValidation, ErrCodeBadRequest, ErrCodeInvalidWalletFormat, ErrCodeInvalidKeyword,
		ErrCodeAccountNotFound, ErrCodeNoWalletLinked, ErrCodeZeroBalance, ErrCodeBelowMinimum:
		return true
	}
	return false
}

// Retryable reports whether the same request may succeed if simply repeated.
func (e *AppError) Retryable() bool {
	switch e.Code {
	case ErrCodeClaimFailed, ErrCodeRewardCreditFailed, ErrCodeDatabaseError,
		ErrCodeCacheError, ErrCodeTelegramAPI, ErrCodeInternal:
		return true
	}
	return false
}

// IsInternal reports whether the error is an infrastructure failure.
func (e *AppError) IsInternal() bool {
	switch e.Code {
	case ErrCodeInternal, ErrCodeDatabaseError, ErrCodeCacheError, ErrCodeTelegramAPI,
		ErrCodeClaimFailed, ErrCodeRewardCreditFailed:
		return true
	}
	return false
}

// WithDetail adds a detail field.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

func (e *AppError) WithUserID(userID int64) *AppError {
	e.UserID = userID
	return e
}

// WithStack captures the call stack.
func (e *AppError) WithStack() *AppError {
	e.Stack = getStackTrace()
	return e
}

// New creates an application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

func getStackTrace() []string {
	var stack []string
	for i := 2; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		if strings.Contains(fn.Name(), "internal/common/errors") {
			continue
		}
		stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, fn.Name()))
		if len(stack) >= 10 {
			break
		}
	}
	return stack
}

// Sentinels for errors.Is comparisons. Never mutate them; use the constructors.
var (
	ErrAccountNotFound = &AppError{Code: ErrCodeAccountNotFound}
	ErrNoWalletLinked  = &AppError{Code: ErrCodeNoWalletLinked}
	ErrZeroBalance     = &AppError{Code: ErrCodeZeroBalance}
	ErrBelowMinimum    = &AppError{Code: ErrCodeBelowMinimum}
	ErrInvalidWallet   = &AppError{Code: ErrCodeInvalidWalletFormat}
	ErrClaimFailed     = &AppError{Code: ErrCodeClaimFailed}
	ErrRewardFailed    = &AppError{Code: ErrCodeRewardCreditFailed}
	ErrDailyCapReached = &AppError{Code: ErrCodeDailyCapReached}
	ErrInvalidKeyword  = &AppError{Code: ErrCodeInvalidKeyword}
)

func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

func NewAccountNotFoundError(userID int64) *AppError {
	return New(ErrCodeAccountNotFound, fmt.Sprintf("Account not found: %d", userID)).
		WithUserID(userID)
}

func NewInvalidWalletError(address, reason string) *AppError {
	return New(ErrCodeInvalidWalletFormat, "Invalid wallet address: "+reason).
		WithDetail("address", address)
}

func NewNoWalletLinkedError(userID int64) *AppError {
	return New(ErrCodeNoWalletLinked, "No wallet address linked").WithUserID(userID)
}

func NewZeroBalanceError(userID int64) *AppError {
	return New(ErrCodeZeroBalance, "Nothing to claim").WithUserID(userID)
}

func NewBelowMinimumError(userID, balance, minimum int64) *AppError {
	return New(ErrCodeBelowMinimum, fmt.Sprintf("Balance %d is below the minimum withdrawal of %d", balance, minimum)).
		WithUserID(userID).
		WithDetail("balance", balance).
		WithDetail("minimum", minimum)
}

func NewClaimFailedError(userID int64, err error) *AppError {
	return Wrap(err, ErrCodeClaimFailed, "Failed to settle claim").WithUserID(userID)
}

func NewRewardCreditFailedError(userID int64, err error) *AppError {
	return Wrap(err, ErrCodeRewardCreditFailed, "Failed to credit reward").WithUserID(userID)
}

func NewDailyCapReachedError(capacity int64) *AppError {
	return New(ErrCodeDailyCapReached, fmt.Sprintf("Daily reward cap of %d sats reached", capacity)).
		WithDetail("cap", capacity)
}

func NewInvalidKeywordError(reason string) *AppError {
	return New(ErrCodeInvalidKeyword, "Invalid keyword rule: "+reason)
}

func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseError, fmt.Sprintf("Database operation failed: %s", operation)).
		WithDetail("operation", operation)
}

func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("Unauthorized: %s", reason)).
		WithDetail("reason", reason)
}

func NewForbiddenError(reason string) *AppError {
	return New(ErrCodeForbidden, fmt.Sprintf("Forbidden: %s", reason)).
		WithDetail("reason", reason)
}

// AsAppError extracts an *AppError from the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in the chain, or ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}
