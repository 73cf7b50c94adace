package dice

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDiceSpec indicates a dice group has a non-positive count or sides.
var ErrInvalidDiceSpec = errors.New("dice must have positive sides and count")

// ErrMissingSource indicates a roll was attempted without a random source.
var ErrMissingSource = errors.New("random source is not configured")

// FieldError describes a single validation problem in an expression.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError reports every problem found in a caller-supplied expression.
type ValidationError struct {
	Errors []FieldError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return "invalid dice expression"
	}
	return strings.Join(e.Messages(), "; ")
}

// Messages returns the collected messages in the order they were found.
func (e *ValidationError) Messages() []string {
	if e == nil {
		return nil
	}
	messages := make([]string, 0, len(e.Errors))
	for _, fieldErr := range e.Errors {
		messages = append(messages, fieldErr.Message)
	}
	return messages
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// Limit names a resource ceiling enforced on dice groups.
type Limit string

const (
	// LimitCount caps the number of dice in a single group.
	LimitCount Limit = "count"
	// LimitSides caps the number of sides on a single die.
	LimitSides Limit = "sides"
)

// ResourceLimitError reports a dice group above a system ceiling.
//
// Actual holds the literal from the expression; it may not fit in an int.
type ResourceLimitError struct {
	Limit  Limit
	Max    int
	Actual string
	Token  string
}

// Error implements the error interface.
func (e *ResourceLimitError) Error() string {
	if e == nil {
		return "dice resource limit exceeded"
	}
	return fmt.Sprintf("dice %s %s in %q exceeds the limit of %d", e.Limit, e.Actual, e.Token, e.Max)
}

// RangeError reports a draw requested with low greater than high.
type RangeError struct {
	Low  int
	High int
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid draw range [%d, %d]", e.Low, e.High)
}

// SourceError reports a random source that failed or broke its contract.
// It is never caused by caller input.
type SourceError struct {
	Err   error
	Value int
	Low   int
	High  int
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e == nil {
		return "random source failure"
	}
	if e.Err != nil {
		return fmt.Sprintf("random source failure: %v", e.Err)
	}
	return fmt.Sprintf("random source returned %d outside [%d, %d]", e.Value, e.Low, e.High)
}

// Unwrap returns the underlying cause.
func (e *SourceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
