package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/api/http/handlers"
	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Events         *handlers.EventsHandler
	AdminEvents    *handlers.EventsHandler
	Stream         *handlers.StreamHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    RateLimiter
	Metrics        *observability.Metrics
	Logger         *zap.Logger
}

// Route is one protected endpoint and the minimum role it requires.
type Route struct {
	Method  string
	Path    string
	Access  auth.Access
	Handler fiber.Handler
}

// ProtectedRoutes lists every endpoint behind the token guard.
func ProtectedRoutes(cfg RouteConfig) []Route {
	return []Route{
		{Method: fiber.MethodGet, Path: "/auth/me", Access: auth.AccessAuthenticated, Handler: cfg.Auth.Me},

		{Method: fiber.MethodGet, Path: "/events", Access: auth.AccessAuthenticated, Handler: cfg.Events.List},
		{Method: fiber.MethodGet, Path: "/events/:id", Access: auth.AccessAuthenticated, Handler: cfg.Events.Get},
		{Method: fiber.MethodPost, Path: "/events", Access: auth.AccessAdmin, Handler: cfg.Events.Create},
		{Method: fiber.MethodPut, Path: "/events/:id", Access: auth.AccessAdmin, Handler: cfg.Events.Update},
		{Method: fiber.MethodDelete, Path: "/events/:id", Access: auth.AccessAdmin, Handler: cfg.Events.Delete},

		{Method: fiber.MethodGet, Path: "/admin/events", Access: auth.AccessAdmin, Handler: cfg.AdminEvents.List},
		{Method: fiber.MethodGet, Path: "/admin/events/:id", Access: auth.AccessAdmin, Handler: cfg.AdminEvents.Get},
		{Method: fiber.MethodPost, Path: "/admin/events", Access: auth.AccessAdmin, Handler: cfg.AdminEvents.Create},
		{Method: fiber.MethodPut, Path: "/admin/events/:id", Access: auth.AccessAdmin, Handler: cfg.AdminEvents.Update},
		{Method: fiber.MethodDelete, Path: "/admin/events/:id", Access: auth.AccessAdmin, Handler: cfg.AdminEvents.Delete},
	}
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app.Get("/", cfg.Health.Root)
	app.Get("/health", cfg.Health.Health)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	authGroup := app.Group("/auth")
	if cfg.RateLimiter != nil {
		limited := RateLimit(cfg.RateLimiter, logger)
		authGroup.Post("/signup", limited, cfg.Auth.Signup)
		authGroup.Post("/login", limited, cfg.Auth.Login)
	} else {
		authGroup.Post("/signup", cfg.Auth.Signup)
		authGroup.Post("/login", cfg.Auth.Login)
	}

	// Registered ahead of /events/:id so "ws" is not taken for an id.
	if cfg.Stream != nil {
		app.Get("/events/ws",
			cfg.AuthMiddleware.GuardQuery(auth.AccessAuthenticated, "token"),
			cfg.Stream.Prepare,
			cfg.Stream.Serve())
	}

	for _, route := range ProtectedRoutes(cfg) {
		app.Add(route.Method, route.Path, cfg.AuthMiddleware.Guard(route.Access), route.Handler)
	}
}
