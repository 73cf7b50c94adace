package service

import (
	"errors"
	"strconv"
	"strings"

	"github.com/louisbranch/dicetower/internal/core/dice"
	apperrors "github.com/louisbranch/dicetower/internal/platform/errors"
)

// ToDomainError classifies a core dice error for transports.
func ToDomainError(err error) *apperrors.Error {
	if err == nil {
		return nil
	}
	if domainErr, ok := apperrors.As(err); ok {
		return domainErr
	}

	var validationErr *dice.ValidationError
	if errors.As(err, &validationErr) {
		return validationError(validationErr)
	}

	var limitErr *dice.ResourceLimitError
	if errors.As(err, &limitErr) {
		return &apperrors.Error{
			Code:    apperrors.CodeDiceResourceLimit,
			Message: limitErr.Error(),
			Metadata: map[string]string{
				"limit":  string(limitErr.Limit),
				"actual": limitErr.Actual,
				"max":    strconv.Itoa(limitErr.Max),
				"token":  limitErr.Token,
			},
			Cause: err,
		}
	}

	var sourceErr *dice.SourceError
	var rangeErr *dice.RangeError
	if errors.As(err, &sourceErr) || errors.As(err, &rangeErr) {
		return apperrors.Wrap(apperrors.CodeDiceSourceFailure, err.Error(), err)
	}

	return apperrors.Wrap(apperrors.CodeUnknown, err.Error(), err)
}

func validationError(err *dice.ValidationError) *apperrors.Error {
	violations := make([]apperrors.FieldViolation, 0, len(err.Errors))
	for _, fieldErr := range err.Errors {
		violations = append(violations, apperrors.FieldViolation{
			Field:       fieldErr.Field,
			Description: fieldErr.Message,
		})
	}

	code := apperrors.CodeDiceInvalidExpression
	if len(err.Errors) == 1 && err.Errors[0].Message == dice.MsgSingleGroupOnly {
		code = apperrors.CodeDiceModeUnsupported
	}
	return &apperrors.Error{
		Code:       code,
		Message:    err.Error(),
		Metadata:   map[string]string{"reason": strings.Join(err.Messages(), "; ")},
		Violations: violations,
		Cause:      err,
	}
}

func invalidModeError(mode string, err error) *apperrors.Error {
	domainErr := ToDomainError(err)
	domainErr.Code = apperrors.CodeDiceInvalidMode
	domainErr.Metadata = map[string]string{"mode": mode}
	return domainErr
}
