// Package errors provides the coded error taxonomy shared by the application
// core and the HTTP surface.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrCodeApplicationNotFound    ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeInvalidStateTransition ErrorCode = "INVALID_STATE_TRANSITION"
	ErrCodePartitionUnavailable   ErrorCode = "PARTITION_UNAVAILABLE"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeOpeningNotFound        ErrorCode = "OPENING_NOT_FOUND"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// Constructors
// ==========================

// NewValidationError creates a non-retryable error for malformed input.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Invalid request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewApplicationNotFound creates an error for an unknown (source, id) pair.
func NewApplicationNotFound(source string, id int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationNotFound,
		Message:   "Application not found",
		Details:   fmt.Sprintf("no application %d in partition %q", id, source),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidStateTransition creates an error for a transition attempted on a
// row that is no longer pending. Covers both terminal re-issue and lost races.
func NewInvalidStateTransition(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidStateTransition,
		Message:   "Application is no longer pending",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPartitionUnavailable wraps a partition query failure. Non-fatal during
// aggregation: the source's contribution is dropped and logged.
func NewPartitionUnavailable(source string, cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodePartitionUnavailable,
		Message:   "Partition query failed",
		Details:   fmt.Sprintf("partition %q: %v", source, cause),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailed wraps a mail-transport failure. Terminal at the
// dispatcher boundary; never escalated past it.
func NewNotificationSendFailed(cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Outcome notification could not be delivered",
		Details:   cause.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOpeningNotFound creates an error for an unknown opening id.
func NewOpeningNotFound(id int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeOpeningNotFound,
		Message:   "Opening not found",
		Details:   fmt.Sprintf("no opening %d", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   cause.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// Inspection helpers
// ==========================

// CodeOf extracts the error code, normalizing unknown errors to INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// HTTPStatus maps the taxonomy onto the admin API's response codes.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case ErrCodeValidationFailed:
		return http.StatusBadRequest
	case ErrCodeApplicationNotFound, ErrCodeOpeningNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidStateTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
