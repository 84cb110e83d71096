package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/harborbank/core/internal/auth"
	"github.com/harborbank/core/internal/config"
	"github.com/harborbank/core/internal/events"
	"github.com/harborbank/core/internal/ledger"
	"github.com/harborbank/core/internal/logging"
	"github.com/harborbank/core/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	var notifier ledger.Notifier
	var health server.HealthService
	if cfg.Events.Enabled {
		publisher, err := events.NewAMQPPublisher(cfg.Events.URL, cfg.Events.Exchange, logger)
		if err != nil {
			logger.Error("failed to connect transaction event feed", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("closing event feed failed", "error", err)
			}
		}()
		notifier = publisher
		health = server.EventFeedHealth{Pinger: publisher}
	}

	bank := ledger.New(notifier)
	sessions := auth.NewService(bank, cfg.Auth)

	if cfg.Auth.AdminEmail != "" && cfg.Auth.AdminPassword != "" {
		admin, err := sessions.EnsureAdmin("Administrator", cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
		if err != nil {
			logger.Error("failed to bootstrap admin user", "error", err)
			os.Exit(1)
		}
		logger.Info("admin user ready", "email", admin.Email)
	}

	apiHandlers := server.NewAPIHandlers(logger, sessions, bank)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           health,
		API:              apiHandlers,
		Sessions:         sessions,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
