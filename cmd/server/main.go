// CohortBox - Real-time Group Chat Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cohortbox

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/cohortbox/internal/api"
	"github.com/tomtom215/cohortbox/internal/auth"
	"github.com/tomtom215/cohortbox/internal/config"
	"github.com/tomtom215/cohortbox/internal/eventbus"
	"github.com/tomtom215/cohortbox/internal/logging"
	"github.com/tomtom215/cohortbox/internal/storage"
	"github.com/tomtom215/cohortbox/internal/supervisor"
	"github.com/tomtom215/cohortbox/internal/supervisor/services"
	ws "github.com/tomtom215/cohortbox/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("addr", cfg.Server.Addr()).
		Bool("storage_in_memory", cfg.Storage.InMemory).
		Msg("Starting CohortBox with supervisor tree")

	badgerStore, err := storage.Open(cfg.Storage.Path, cfg.Storage.InMemory)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Storage.Path).Msg("Failed to open storage")
	}
	defer func() {
		if err := badgerStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing storage")
		}
	}()

	store := storage.NewBreakerStore(badgerStore, storage.BreakerConfig{
		Name:        "badger",
		MaxFailures: cfg.Storage.BreakerMaxFailures,
		Interval:    cfg.Storage.BreakerInterval,
		Timeout:     cfg.Storage.BreakerTimeout,
	})

	jwtManager, err := auth.NewJWTManager(cfg.Security.JWTSecret, 0)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}

	bus := eventbus.New(eventbus.DefaultConfig(), nil)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	wsHub := ws.NewHub(store, cfg.Realtime)

	handler := api.NewHandler(cfg, store, wsHub, bus, jwtManager)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(cfg.Security)))

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// sutureslog needs slog; the adapter writes through zerolog.
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	if cfg.Storage.GCInterval > 0 && !cfg.Storage.InMemory {
		tree.AddDataService(services.NewStorageGCService(badgerStore, cfg.Storage.GCInterval))
	}

	tree.AddMessagingService(services.NewHubService(wsHub))
	tree.AddMessagingService(services.NewBusService(ws.NewBusSubscriber(wsHub, bus)))

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("CohortBox stopped gracefully")
}
