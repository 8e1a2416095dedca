package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"boutique/internal/config"
	"boutique/internal/database"
	"boutique/internal/logger"
	"boutique/internal/repository"
	"boutique/internal/server"
	"boutique/internal/service"
	"boutique/internal/uploads"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 30 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")

	done <- true
}

func main() {
	// Load configuration
	_ = godotenv.Load()
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting storefront API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
	)

	// Open the persistence backend. The choice between the embedded and
	// networked engine happens exactly once, here; an unreachable store
	// is fatal.
	store, err := database.Open(database.Config{
		URL:       cfg.Database.URL,
		Path:      cfg.Database.Path,
		TxTimeout: time.Duration(cfg.Database.TxTimeoutSeconds) * time.Second,
	}, log)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}

	// Run migrations
	if err := database.RunMigrations(store, log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully")

	// Rehash any credentials still stored as legacy plaintext.
	authService := service.NewAuthService(repository.NewUserRepository(store), cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessExpiry)*time.Minute)
	migrated, err := authService.MigrateLegacyPasswords(context.Background())
	if err != nil {
		log.Error("Legacy credential migration failed", zap.Error(err))
	} else if migrated > 0 {
		log.Info("Migrated legacy credentials", zap.Int("count", migrated))
	}

	files, err := uploads.NewFileStore(cfg.Uploads.Dir)
	if err != nil {
		log.Fatal("Failed to prepare upload directory", zap.Error(err))
	}

	// Create server
	srv := server.NewServer(cfg, log, store, files)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info("Graceful shutdown complete")
}
