// Package main is the entrypoint for the medportal auth API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/medportal/medportal/internal/auth"
	"github.com/medportal/medportal/internal/cache"
	"github.com/medportal/medportal/internal/config"
	"github.com/medportal/medportal/internal/handler"
	"github.com/medportal/medportal/internal/metrics"
	"github.com/medportal/medportal/internal/middleware"
	"github.com/medportal/medportal/internal/migrate"
	"github.com/medportal/medportal/internal/repository"
	"github.com/medportal/medportal/internal/server"
	"github.com/medportal/medportal/internal/service"
)

func main() {
	ctx := context.Background()

	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	creds, err := auth.NewDemoCredentials(cfg.DemoEmail, cfg.DemoPassword, cfg.DemoUserName)
	if err != nil {
		logger.Error("failed to prepare demo credentials", "error", err)
		os.Exit(1)
	}

	var (
		repo   *repository.Repository
		events service.EventStore
	)
	if cfg.AuditEnabled() {
		if cfg.AutoMigrate {
			runner, err := migrate.New(cfg.DatabaseURL, logger)
			if err == nil {
				err = runner.Up(ctx)
			}
			if err != nil {
				logger.Error("failed to apply migrations",
					slog.String("error", config.SanitizeError(err, cfg.DatabaseURL)),
				)
				os.Exit(1)
			}
		}

		repo, err = repository.New(ctx, cfg.DatabaseURL, repository.Options{
			MaxConns:         cfg.DatabaseMaxConns,
			StatementTimeout: cfg.AuditStatementTimeout,
		})
		if err != nil {
			logger.Error("failed to connect to database",
				slog.String("error", config.SanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", config.RedactURL(cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		events = repo
		logger.Info("auth audit trail enabled", "database_url", config.RedactURL(cfg.DatabaseURL))
	}

	var (
		cacheClient *cache.Cache
		limiter     middleware.Limiter
	)
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL, cache.Options{PoolSize: cfg.RedisPoolSize})
		if err != nil {
			logger.Error("failed to connect to Redis",
				slog.String("error", config.SanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", config.RedactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		if cfg.RateLimitEnabled() {
			authLimiter, err := cache.NewAuthLimiter(cacheClient, cfg.RateLimitAuthRPM, cfg.RateLimitAuthBurst)
			if err != nil {
				logger.Error("invalid rate limit settings", "error", err)
				os.Exit(1)
			}
			limiter = authLimiter
			logger.Info("auth rate limiting enabled",
				"rpm", cfg.RateLimitAuthRPM,
				"burst", cfg.RateLimitAuthBurst,
			)
		}
	}

	recorder := metrics.NewInMemory()
	authService := service.NewAuthService(creds, events, recorder, logger)
	authHandler := handler.NewAuthHandler(authService, logger)

	var eventsHandler *handler.EventsHandler
	if cfg.IsDevelopment() && events != nil {
		eventsHandler = handler.NewEventsHandler(authService, logger)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	router := handler.NewRouter(handler.RouterConfig{
		Logger:       logger,
		Auth:         authHandler,
		Health:       handler.NewHealthHandler(repo, cacheClient),
		Metrics:      handler.NewMetricsHandler(recorder),
		Events:       eventsHandler,
		Limiter:      limiter,
		Recorder:     recorder,
		CORS:         corsCfg,
		Development:  cfg.IsDevelopment(),
		MaxBodyBytes: cfg.MaxRequestBodySize,
	})

	srv := server.New(router, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	if repo != nil {
		srv.OnShutdown("postgres", func(ctx context.Context) error {
			repo.Close()
			return nil
		})
	}
	if cacheClient != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"audit", cfg.AuditEnabled(),
		"rate_limit", limiter != nil,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger builds the process logger from LOG_FORMAT and LOG_LEVEL and
// installs it as the slog default.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "medportal")
	slog.SetDefault(logger)
	return logger
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
