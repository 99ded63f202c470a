package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/event-service/internal/api/http"
	"github.com/spec-kit/event-service/internal/api/http/handlers"
	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/broadcast"
	"github.com/spec-kit/event-service/internal/config"
	"github.com/spec-kit/event-service/internal/observability"
	"github.com/spec-kit/event-service/internal/persistence"
	"github.com/spec-kit/event-service/internal/repository"
	"github.com/spec-kit/event-service/internal/service"
	"github.com/spec-kit/event-service/internal/stream"
	"github.com/spec-kit/event-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	if pg.PoolHandle() == nil {
		logger.Fatal("POSTGRES_DSN is required")
	}

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis, redisUp := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var limiter httptransport.RateLimiter
	if redisUp {
		limiter = httptransport.NewRedisRateLimiter(redis.Client, cfg.Auth.RateLimitPerMinute, time.Minute)
	} else {
		logger.Warn("using in-process rate limiter")
		limiter = httptransport.NewMemoryRateLimiter(cfg.Auth.RateLimitPerMinute, time.Minute)
	}

	tokens, err := auth.NewTokenManager([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		logger.Fatal("failed to init token manager", zap.Error(err))
	}
	hasher, err := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to init password hasher", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	eventRepo := repository.NewEventRepository(pool)

	dispatcher := broadcast.NewInMemoryDispatcher()
	hub := stream.NewHub(cfg.Stream.ClientBuffer, logger.Named("hub"), metrics)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: userRepo,
		Tokens:   tokens,
		Hasher:   hasher,
		Logger:   logger,
	})
	eventService := service.NewEventService(service.EventDependencies{
		EventRepo:  eventRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	worker.StartStreamWorker(service.NewStreamService(dispatcher, hub, logger))

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
		"postgres": pg,
		"redis":    redis,
	})

	app := httptransport.NewServer(httptransport.ServerOptions{
		AppName:        cfg.App.Name,
		RequestTimeout: cfg.App.RequestTimeout(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         logger,
		Metrics:        metrics,
		Routes: httptransport.RouteConfig{
			Health:         healthHandler,
			Auth:           handlers.NewAuthHandler(authService),
			Events:         handlers.NewEventsHandler(eventService, service.DefaultEventLimit),
			AdminEvents:    handlers.NewEventsHandler(eventService, service.MaxEventLimit),
			Stream:         handlers.NewStreamHandler(authService, eventService, hub, logger),
			AuthMiddleware: auth.NewAuthMiddleware(tokens, logger.Named("auth"), metrics),
			RateLimiter:    limiter,
		},
	})

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
