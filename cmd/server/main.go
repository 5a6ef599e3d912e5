// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/adrianomelo/lynx/internal/api"
	"github.com/adrianomelo/lynx/internal/config"
	"github.com/adrianomelo/lynx/internal/logging"
	"github.com/adrianomelo/lynx/internal/pixel"
	"github.com/adrianomelo/lynx/internal/supervisor"
	"github.com/adrianomelo/lynx/internal/supervisor/services"
	"github.com/adrianomelo/lynx/internal/useragent"
	ws "github.com/adrianomelo/lynx/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("store_backend", cfg.Store.Backend).
		Bool("event_bus", cfg.NATS.Enabled).
		Msg("Starting Lynx")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error().Err(err).Msg("Lynx stopped with error")
		stop()
		os.Exit(1)
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := initStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLogged("store", store)

	resolver, geoClosers, err := initGeoIP(&cfg.GeoIP)
	if err != nil {
		return err
	}
	for _, c := range geoClosers {
		defer closeLogged("geoip", c)
	}

	bus, err := initEventBus(&cfg.NATS)
	if err != nil {
		return err
	}

	image, err := loadImage(&cfg.Pixel)
	if err != nil {
		return err
	}

	registry := ws.NewRegistry()
	wsHandler := ws.NewHandler(registry, clientConfig(&cfg.WebSocket), cfg.WebSocket.AllowedOrigins)

	deps := pixel.Deps{
		Store:     store,
		Publisher: registry,
		Geo:       resolver,
		UA:        useragent.NewClassifier(),
	}
	if bus != nil {
		deps.Forwarder = bus
		defer closeLogged("event bus", bus)
	}
	pixelSvc := pixel.NewService(deps, image, cfg.Pixel.WriteTimeout)

	handler := api.NewHandler(api.HandlerDeps{
		Pixel:           pixelSvc,
		WebSocket:       wsHandler,
		Registry:        registry,
		Store:           store,
		EventBusEnabled: bus != nil,
		Version:         version,
	})
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}
	tree.AddMessagingService(services.NewSubscriptionRegistryService(registry))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().
		Str("addr", server.Addr).
		Strs("geoip_providers", resolver.Providers()).
		Msg("Starting supervisor tree")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Shutdown signal received, supervisor tree stopped")

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return nil
}
