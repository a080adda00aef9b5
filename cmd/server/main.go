// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tipkesho-settlement/config"
	"tipkesho-settlement/internal/handler"
	"tipkesho-settlement/internal/provider/flutterwave"
	"tipkesho-settlement/internal/repository"
	"tipkesho-settlement/internal/router"
	"tipkesho-settlement/internal/usecase"
	"tipkesho-settlement/pkg/secrets"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("starting tip settlement service")

	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file found, relying on environment")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	logger.Info("configuration loaded",
		zap.String("environment", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("fee_rate", cfg.Tip.FeeRate.String()),
		zap.String("currency", cfg.Tip.Currency))

	// Connect to database
	dbPool, err := pgxpool.New(context.Background(), cfg.DatabaseURL())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer dbPool.Close()

	logger.Info("connected to database",
		zap.String("database", cfg.Database.DBName))

	// Connect to redis (session store)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// Initialize repositories
	tipRepo := repository.NewTipRepository(dbPool)
	aggregateRepo := repository.NewAggregateRepository(dbPool)
	directory := repository.NewCreatorDirectory(dbPool)
	sessionRepo := repository.NewSessionRepository(rdb)

	// Initialize provider
	secretStore := secrets.NewEnvStore("")
	gateway := flutterwave.NewFlutterwaveProvider(cfg.Flutterwave, secretStore)

	// Initialize usecases
	tipUC := usecase.NewTipUsecase(
		tipRepo,
		aggregateRepo,
		directory,
		gateway,
		secretStore,
		cfg,
		logger,
	)
	sessionUC := usecase.NewSessionUsecase(sessionRepo, cfg, logger)

	// Initialize handlers
	tipHandler := handler.NewTipHandler(tipUC, logger)
	sessionHandler := handler.NewSessionHandler(sessionUC, logger)

	// Setup routes
	r := router.SetupRoutes(tipHandler, sessionHandler, sessionUC, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	logger.Info("tip settlement service started successfully",
		zap.String("port", cfg.Server.Port),
		zap.String("environment", cfg.Server.Env))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
