package http

import (
	"errors"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/open-builders/satchat-backend/internal/common/errors"
)

// bindError turns a ShouldBindJSON failure into a VALIDATION_ERROR naming the
// first offending field. Malformed JSON is reported against fallbackField.
func bindError(err error, fallbackField string) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return apperrors.NewValidationError(fe.Field(), "failed on '"+fe.Tag()+"' rule")
	}
	return apperrors.NewValidationError(fallbackField, err.Error())
}
