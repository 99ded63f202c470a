package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/service"
	apperrors "github.com/spec-kit/event-service/pkg/util"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"validation", &service.ValidationError{Fields: map[string]string{"password": "too long"}}, http.StatusBadRequest, "VALIDATION_FAILED", "invalid payload"},
		{"duplicate email", fmt.Errorf("signup: %w", service.ErrDuplicateEmail), http.StatusConflict, "CONFLICT", "email already registered"},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED", "invalid email or password"},
		{"unknown principal", service.ErrUnknownPrincipal, http.StatusUnauthorized, "UNAUTHORIZED", auth.UnauthorizedMessage},
		{"admin signup", service.ErrAdminSignupDisabled, http.StatusForbidden, "FORBIDDEN", "admin signup disabled"},
		{"event missing", service.ErrEventNotFound, http.StatusNotFound, "NOT_FOUND", "event not found"},
		{"fiber status", fiber.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method Not Allowed"},
		{"domain passthrough", apperrors.NewTooManyRequests("slow down"), http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "slow down"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := translateError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.status, de.HTTPStatus)
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, tt.message, de.Message)
		})
	}
}

func TestTranslateError_ValidationDetails(t *testing.T) {
	de := translateError(&service.ValidationError{Fields: map[string]string{"role": "must be admin or normal"}})
	assert.Equal(t, map[string]any{"role": "must be admin or normal"}, de.Details)
}

func TestTranslateError_KeepsCauseForLogs(t *testing.T) {
	de := translateError(service.ErrInvalidCredentials)
	assert.ErrorIs(t, de, service.ErrInvalidCredentials)
}
