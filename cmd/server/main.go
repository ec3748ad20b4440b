package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fieldroute/backend/internal/config"
	"github.com/fieldroute/backend/internal/db"
	httpapi "github.com/fieldroute/backend/internal/http"
	"github.com/fieldroute/backend/internal/notify"
	"github.com/fieldroute/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "fieldroute-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	var push notify.PushSender
	if cfg.PushURL == "" {
		push = notify.NopPush{}
		logger.Info().Msg("push gateway not configured, notifications stay local")
	} else {
		push = notify.HTTPPush{BaseURL: cfg.PushURL, APIKey: cfg.PushAPIKey}
	}
	notifications := notify.NewService(store, store, push, logger)

	visits := service.NewVisitService(store, store, store, store, logger)
	assignments := service.NewAssignmentService(store, store, store, notifications, logger)

	// Collapse duplicate visit rows left behind by historical races before
	// accepting traffic.
	if removed, err := visits.ReconcileDuplicates(ctx); err != nil {
		logger.Error().Err(err).Msg("duplicate visit reconciliation failed")
	} else if removed > 0 {
		logger.Info().Int("removed", removed).Msg("duplicate visits reconciled")
	}

	router := httpapi.Router(cfg, store, visits, assignments, notifications, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
