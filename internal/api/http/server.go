package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/observability"
)

// ServerOptions configures NewServer.
type ServerOptions struct {
	AppName        string
	RequestTimeout time.Duration
	AllowedOrigins []string
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	Routes         RouteConfig
}

// NewServer builds the fiber app with middlewares and routes attached.
func NewServer(opts ServerOptions) *fiber.App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               opts.AppName,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	RegisterMiddlewares(app, logger, opts.Metrics, opts.RequestTimeout, opts.AllowedOrigins)

	routes := opts.Routes
	if routes.Logger == nil {
		routes.Logger = logger
	}
	if routes.Metrics == nil {
		routes.Metrics = opts.Metrics
	}
	RegisterRoutes(app, routes)
	return app
}
