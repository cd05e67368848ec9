package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotAuthenticated is returned when a request carries no live session.
	ErrNotAuthenticated = errors.New("not logged in")
	// ErrNotAuthorized is returned when a non-admin identity invokes an admin action.
	ErrNotAuthorized = errors.New("access denied")
	// ErrChallengeNotFound is returned when a challenge id is unknown or not visible.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrFileNotAccessible is returned when the file gateway refuses a file.
	ErrFileNotAccessible = errors.New("file not accessible")
	// ErrValidation is the category every ValidationError belongs to.
	ErrValidation = errors.New("validation failed")
	// ErrUploadTooLarge is returned when an uploaded file exceeds the size limit.
	ErrUploadTooLarge = errors.New("upload too large")
)

// ValidationError carries a user-facing message for a rejected form.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a validation error with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
// Anything unrecognised is reported as a generic storage failure.
func MapErrorToHTTP(err error) *HTTPError {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return NewHTTPError(http.StatusUnauthorized, "Not logged in", "NOT_AUTHENTICATED")
	case errors.Is(err, ErrNotAuthorized):
		return NewHTTPError(http.StatusForbidden, "Access denied", "NOT_AUTHORIZED")
	case errors.Is(err, ErrChallengeNotFound):
		return NewHTTPError(http.StatusNotFound, "Challenge not found", "CHALLENGE_NOT_FOUND")
	case errors.Is(err, ErrFileNotAccessible):
		return NewHTTPError(http.StatusNotFound, "File not accessible", "FILE_NOT_ACCESSIBLE")
	case errors.Is(err, ErrUploadTooLarge):
		return NewHTTPError(http.StatusRequestEntityTooLarge, "Uploaded file is too large", "UPLOAD_TOO_LARGE")
	case errors.As(err, &verr):
		return NewHTTPError(http.StatusBadRequest, verr.Message, "VALIDATION_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "An internal error occurred", "STORAGE_ERROR")
	}
}
