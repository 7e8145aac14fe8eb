package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Stewz00/login-guard/internal/config"
	"github.com/Stewz00/login-guard/internal/database"
	"github.com/Stewz00/login-guard/internal/handler"
	"github.com/Stewz00/login-guard/internal/logging"
	"github.com/Stewz00/login-guard/internal/repository"
	"github.com/Stewz00/login-guard/internal/service"
	"github.com/Stewz00/login-guard/internal/session"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logging.New(os.Stdout, cfg.LogLevel)
	if cfg.EphemeralSecret {
		log.Warn("SECRET_KEY is not set; using a random per-process secret, sessions will not survive a restart")
	}

	// Initialize database
	db, err := database.New(ctx, cfg.DbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	// Initialize repositories, services, and handlers
	store := repository.NewCredentialRepository(db, cfg.QueryTimeout)
	authService, err := service.NewAuthService(store, cfg, log)
	if err != nil {
		return err
	}
	sessions := session.NewManager(cfg.SecretKey, cfg.SessionTTL)
	authHandler := handler.NewAuthHandler(authService, sessions, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.NewRouter(authHandler, sessions, cfg.LoginRateLimit),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Info("server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited properly")
	return nil
}
