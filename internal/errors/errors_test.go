package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not authenticated", ErrNotAuthenticated, http.StatusUnauthorized, "NOT_AUTHENTICATED"},
		{"wrapped not authorized", fmt.Errorf("review: %w", ErrNotAuthorized), http.StatusForbidden, "NOT_AUTHORIZED"},
		{"challenge not found", ErrChallengeNotFound, http.StatusNotFound, "CHALLENGE_NOT_FOUND"},
		{"file refused", ErrFileNotAccessible, http.StatusNotFound, "FILE_NOT_ACCESSIBLE"},
		{"validation", NewValidationError("Title is required"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"anything else", errors.New("disk on fire"), http.StatusInternalServerError, "STORAGE_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, tt.code, httpErr.Code)
		})
	}
}

func TestValidationError_Is(t *testing.T) {
	err := fmt.Errorf("create: %w", NewValidationError("Flag is required"))
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "Flag is required", MapErrorToHTTP(err).Message)
}
