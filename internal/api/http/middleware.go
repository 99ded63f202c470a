package http

import (
	"context"
	"errors"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/observability"
	"github.com/spec-kit/event-service/internal/service"
	apperrors "github.com/spec-kit/event-service/pkg/util"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration, allowedOrigins []string) {
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(cors.New(corsConfig(allowedOrigins)))
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization," + observability.RequestIDHeader,
		ExposeHeaders: observability.RequestIDHeader,
	}
	// Credentials may only be allowed with an explicit origin list.
	if len(allowedOrigins) > 0 {
		cfg.AllowOrigins = strings.Join(allowedOrigins, ",")
		cfg.AllowCredentials = true
	}
	return cfg
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := translateError(err)
				metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)
				if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
					logger.Error("request failed",
						zap.String("request_id", observability.RequestID(c)),
						zap.Error(err))
				}
				err = writeError(c, domainErr)
			}
		}()
		return c.Next()
	}
}

// ErrorHandler is the fiber fallback for errors that escape the middleware
// chain, e.g. body limit violations raised before any handler runs.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return writeError(c, translateError(err))
}

func writeError(c *fiber.Ctx, domainErr *apperrors.DomainError) error {
	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": body})
}

// translateError maps service and framework errors onto the public error model.
func translateError(err error) *apperrors.DomainError {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		details := make(map[string]any, len(validationErr.Fields))
		for k, v := range validationErr.Fields {
			details[k] = v
		}
		return apperrors.NewValidationError("invalid payload", details)
	}

	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		return apperrors.NewConflict("email already registered", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperrors.NewUnauthorized("invalid email or password", err)
	case errors.Is(err, service.ErrUnknownPrincipal):
		return apperrors.NewUnauthorized(auth.UnauthorizedMessage, err)
	case errors.Is(err, service.ErrAdminSignupDisabled):
		return apperrors.NewForbidden("admin signup disabled")
	case errors.Is(err, service.ErrEventNotFound):
		return apperrors.NewNotFound("event", nil)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apperrors.FromStatus(fiberErr.Code, fiberErr.Message)
	}
	return apperrors.ToDomainError(err)
}
