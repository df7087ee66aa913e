package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baxromumarov/gig-crawler/internal/api"
	"github.com/baxromumarov/gig-crawler/internal/config"
	"github.com/baxromumarov/gig-crawler/internal/observability"
	"github.com/baxromumarov/gig-crawler/internal/store"
)

func main() {
	cfg, err := config.Load(os.Getenv("GIG_CONFIG"))
	if err != nil {
		os.Stderr.WriteString("error: " + err.Error() + "\n")
		os.Exit(2)
	}
	logger := observability.NewLogger(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	if cfg.DatabaseURL == "" {
		logger.Error("database_url is required")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbStore, err := store.NewStore(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to store", "error", err)
		os.Exit(1)
	}
	defer dbStore.Close()

	if err := dbStore.RunMigrations(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewServer(dbStore, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("starting server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
