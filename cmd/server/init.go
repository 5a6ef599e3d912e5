// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/adrianomelo/lynx/internal/config"
	"github.com/adrianomelo/lynx/internal/eventbus"
	"github.com/adrianomelo/lynx/internal/geoip"
	"github.com/adrianomelo/lynx/internal/logging"
	"github.com/adrianomelo/lynx/internal/pixel"
	"github.com/adrianomelo/lynx/internal/timeseries"
	ws "github.com/adrianomelo/lynx/internal/websocket"
)

func initStore(ctx context.Context, cfg *config.Config) (timeseries.Writer, error) {
	store, err := timeseries.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logging.Info().
		Str("backend", store.Name()).
		Bool("breaker", cfg.Store.BreakerEnabled).
		Msg("Time-series store initialized")
	return store, nil
}

// initGeoIP builds the resolver chain: the local MaxMind database first,
// then ip-api. With neither configured every event gets the unknown country.
// The returned closers must be closed on shutdown.
func initGeoIP(cfg *config.GeoIPConfig) (*geoip.Resolver, []io.Closer, error) {
	var (
		providers []geoip.Provider
		closers   []io.Closer
	)

	if cfg.DatabasePath != "" {
		db, err := geoip.OpenMaxMindDB(cfg.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("init geoip: %w", err)
		}
		providers = append(providers, db)
		closers = append(closers, db)
	}
	if cfg.IPAPIEnabled {
		providers = append(providers, geoip.NewIPAPIProvider(cfg.IPAPIURL, cfg.IPAPIRatePerMinute, cfg.Timeout))
	}
	if len(providers) == 0 {
		logging.Warn().Msg("No GeoIP provider configured; country will be unknown")
	}

	return geoip.NewResolver(cfg.CacheSize, cfg.CacheTTL, providers...), closers, nil
}

// initEventBus returns nil when forwarding is disabled.
func initEventBus(cfg *config.NATSConfig) (*eventbus.Publisher, error) {
	if !cfg.Enabled {
		logging.Info().Msg("Event bus forwarding disabled (NATS_ENABLED=false)")
		return nil, nil
	}
	bus, err := eventbus.NewPublisher(cfg)
	if err != nil {
		return nil, fmt.Errorf("init event bus: %w", err)
	}
	logging.Info().Str("url", cfg.URL).Str("topic", bus.Topic()).Msg("Event bus forwarding enabled")
	return bus, nil
}

func loadImage(cfg *config.PixelConfig) (pixel.Image, error) {
	if cfg.ImagePath == "" {
		return pixel.DefaultImage(), nil
	}
	img, err := pixel.LoadImage(cfg.ImagePath)
	if err != nil {
		return pixel.Image{}, fmt.Errorf("load pixel image: %w", err)
	}
	logging.Info().
		Str("path", cfg.ImagePath).
		Str("content_type", img.ContentType).
		Int("bytes", len(img.Data)).
		Msg("Custom pixel image loaded")
	return img, nil
}

func clientConfig(cfg *config.WebSocketConfig) ws.ClientConfig {
	return ws.ClientConfig{
		SendBufferSize: cfg.SendBufferSize,
		WriteWait:      cfg.WriteWait,
		PongWait:       cfg.PongWait,
		PingPeriod:     cfg.PingPeriod,
		MaxMessageSize: cfg.MaxMessageSize,
	}
}

func closeLogged(name string, c io.Closer) {
	if err := c.Close(); err != nil {
		logging.Error().Err(err).Str("resource", name).Msg("Error closing resource")
	}
}
