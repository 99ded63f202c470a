package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	conflict := NewConflict("email already registered", nil)
	wrapped := fmt.Errorf("signup: %w", conflict)

	de := ToDomainError(wrapped)
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
	assert.Equal(t, "CONFLICT", de.Code)

	de = ToDomainError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.Equal(t, "internal server error", de.Message)

	assert.Nil(t, ToDomainError(nil))
}

func TestNewUnauthorizedHidesCause(t *testing.T) {
	cause := errors.New("token expired")
	err := NewUnauthorized("authentication required", cause)

	de := ToDomainError(err)
	assert.Equal(t, "authentication required", de.Message)
	assert.ErrorIs(t, err, cause)
}

func TestFromStatus(t *testing.T) {
	de := FromStatus(http.StatusNotFound, "")
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Equal(t, "Not Found", de.Message)

	de = FromStatus(http.StatusMethodNotAllowed, "nope")
	assert.Equal(t, "METHOD_NOT_ALLOWED", de.Code)
	assert.Equal(t, "nope", de.Message)
}
