package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/carbonlens/carbon-engine/pkg/auth"
	"github.com/carbonlens/carbon-engine/pkg/config"
	"github.com/carbonlens/carbon-engine/pkg/database"
	"github.com/carbonlens/carbon-engine/pkg/forecast"
	"github.com/carbonlens/carbon-engine/pkg/handlers"
	"github.com/carbonlens/carbon-engine/pkg/logging"
	"github.com/carbonlens/carbon-engine/pkg/middleware"
	"github.com/carbonlens/carbon-engine/pkg/repositories"
	"github.com/carbonlens/carbon-engine/pkg/retry"
	"github.com/carbonlens/carbon-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", cfg.Database.Host),
		zap.String("forecast_url", cfg.Forecast.BaseURL),
		zap.Bool("redis_enabled", cfg.Redis.Enabled()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database startup can race the database container coming up, so retry
	// with backoff before giving up.
	db, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.ConnectionString(),
			MaxConnections: cfg.Database.MaxConnections,
		})
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Migrations run through database/sql (required by golang-migrate).
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		_ = sqlDB.Close()
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	redisClient, err := database.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	jwksClient, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		logger.Fatal("Failed to create JWKS client", zap.Error(err))
	}
	defer jwksClient.Close()

	authService := auth.NewAuthService(jwksClient, logger)
	authMiddleware := auth.NewMiddleware(authService, logger)

	forecastClient := forecast.NewClient(
		cfg.Forecast.BaseURL,
		cfg.Forecast.Timeout(),
		redisClient,
		cfg.Forecast.CacheTTL(),
		logger,
	)

	footprintRepo := repositories.NewFootprintRepository(db)
	footprintService, err := services.NewFootprintService(footprintRepo, forecastClient, logger)
	if err != nil {
		logger.Fatal("Failed to create footprint service", zap.Error(err))
	}

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewFootprintHandler(footprintService, logger).RegisterRoutes(mux, authMiddleware)

	if cfg.Chat.APIKey != "" {
		chatService := services.NewChatService(openai.NewClient(cfg.Chat.APIKey), cfg.Chat.Model, logger)
		handlers.NewChatHandler(chatService, logger).RegisterRoutes(mux)
	} else {
		logger.Info("OPENAI_API_KEY not set, chat endpoint disabled")
	}

	server := &http.Server{
		Addr:         cfg.BindAddr + ":" + cfg.Port,
		Handler:      middleware.RequestLogger(logger)(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting carbon-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
		}
	}

	logger.Info("Server stopped")
}
