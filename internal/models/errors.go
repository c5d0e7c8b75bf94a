package models

import (
	"errors"
	"fmt"
)

// Error taxonomy surfaced by the agent and its collaborators.
var (
	ErrDataUnavailable = errors.New("data unavailable")
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrAgentNotReady   = errors.New("agent not ready")
)

// ErrorKind names one of the taxonomy errors for responses and metrics.
type ErrorKind string

const (
	KindNone            ErrorKind = ""
	KindDataUnavailable ErrorKind = "data_unavailable"
	KindValidation      ErrorKind = "validation_error"
	KindNotFound        ErrorKind = "not_found"
	KindAgentNotReady   ErrorKind = "agent_not_ready"
)

// KindOf classifies err. Anything outside the taxonomy is reported as
// data unavailable so callers never see an unclassified failure.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrAgentNotReady):
		return KindAgentNotReady
	default:
		return KindDataUnavailable
	}
}

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
