// Package errors provides structured transport errors with i18n support.
package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Request errors
	CodeRequestInvalid Code = "REQUEST_INVALID"

	// Dice errors
	CodeDiceInvalidExpression Code = "DICE_INVALID_EXPRESSION"
	CodeDiceModeUnsupported   Code = "DICE_MODE_UNSUPPORTED"
	CodeDiceInvalidMode       Code = "DICE_INVALID_MODE"
	CodeDiceResourceLimit     Code = "DICE_RESOURCE_LIMIT"
	CodeDiceSourceFailure     Code = "DICE_SOURCE_FAILURE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - malformed or unsupported caller input
	case CodeRequestInvalid,
		CodeDiceInvalidExpression,
		CodeDiceModeUnsupported,
		CodeDiceInvalidMode:
		return codes.InvalidArgument

	// ResourceExhausted - well-formed input above a system ceiling
	case CodeDiceResourceLimit:
		return codes.ResourceExhausted

	default:
		return codes.Internal
	}
}

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c.GRPCCode() {
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.ResourceExhausted:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
