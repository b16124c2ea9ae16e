package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"margemreal/internal/delivery"
	"margemreal/internal/infrastructure"
	"margemreal/internal/usecase"
	"margemreal/pkg/config"
	"margemreal/pkg/logger"
	"margemreal/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)
	log.Info("Starting Margem Real service")

	m := metrics.New()

	store, err := infrastructure.NewFileStore(cfg.Storage.DataDir, log, m)
	if err != nil {
		log.WithError(err).Error("Failed to open data directory")
		os.Exit(1)
	}

	analysisRepo := infrastructure.NewAnalysisRepository(store, log)
	userRepo := infrastructure.NewUserRepository(store, log)

	analysisService := usecase.NewAnalysisService(analysisRepo, log, m)
	authService := usecase.NewAuthService(userRepo, cfg.Auth.DefaultTenant, cfg.Auth.LoginDelay, log, m)

	handlers := delivery.NewHTTPHandlers(analysisService, authService, cfg.Auth.DefaultTenant, log, m)
	router := delivery.NewHTTPRouter(handlers, cfg, log, m)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router.SetupRoutes(),
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server exited")
}
