package errors

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "video-transcript/internal/app/errors"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindInternal           ErrorKind = "internal"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindBadRequest         ErrorKind = "bad_request"
	KindRateLimited        ErrorKind = "rate_limited"

	// Pipeline-specific kinds surfaced from the acquisition chain.
	KindResolution       ErrorKind = "resolution"
	KindDurationExceeded ErrorKind = "duration_exceeded"
	KindAcquisition      ErrorKind = "acquisition"
	KindTimeout          ErrorKind = "timeout"
)

// APIError represents a structured API error response
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindBadRequest, KindResolution, KindDurationExceeded:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindAcquisition:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error with field details
func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: message,
		Details: fields,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Kind:    KindBadRequest,
		Message: message,
	}
}

// NewServiceUnavailableError creates a service unavailable error
func NewServiceUnavailableError(message string) *APIError {
	return &APIError{
		Kind:    KindServiceUnavailable,
		Message: message,
	}
}

// NewRateLimitedError creates a rate limited error
func NewRateLimitedError(message string) *APIError {
	return &APIError{
		Kind:    KindRateLimited,
		Message: message,
	}
}

// FromPipelineError maps a structured acquisition pipeline error onto its
// API representation. Unknown errors become internal.
func FromPipelineError(err error) *APIError {
	if err == nil {
		return nil
	}

	var resolution *apperrors.ResolutionError
	if errors.As(err, &resolution) {
		return &APIError{
			Kind:    KindResolution,
			Message: resolution.Error(),
		}
	}

	var duration *apperrors.DurationExceededError
	if errors.As(err, &duration) {
		return &APIError{
			Kind:    KindDurationExceeded,
			Message: duration.Error(),
			Details: map[string]string{
				"duration_seconds": fmt.Sprint(duration.Duration),
				"limit_seconds":    fmt.Sprint(duration.Limit),
			},
		}
	}

	if acq, ok := apperrors.AsAcquisition(err); ok {
		return &APIError{
			Kind:    KindAcquisition,
			Message: acq.Error(),
			Details: map[string]string{"stage": string(acq.Stage)},
		}
	}

	var timeout *apperrors.TimeoutError
	if errors.As(err, &timeout) {
		return &APIError{
			Kind:    KindTimeout,
			Message: timeout.Error(),
			Details: map[string]string{"budget": timeout.Budget},
		}
	}

	if errors.Is(err, apperrors.ErrTranscriberBusy) {
		return NewServiceUnavailableError("transcription capacity exhausted, try again later")
	}

	return NewInternalError(err.Error())
}
