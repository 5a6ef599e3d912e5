// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package timeseries

import (
	"context"
	"fmt"

	"github.com/adrianomelo/lynx/internal/config"
)

// New builds the writer selected by cfg.Store.Backend, wrapped in a
// circuit breaker when enabled.
func New(ctx context.Context, cfg *config.Config) (Writer, error) {
	var (
		w   Writer
		err error
	)

	switch cfg.Store.Backend {
	case config.BackendTimestream:
		w, err = NewTimestreamWriter(ctx, &cfg.Timestream)
	case config.BackendDuckDB:
		w, err = OpenDuckDB(ctx, &cfg.DuckDB)
	case config.BackendNone:
		return NopWriter{}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s store: %w", cfg.Store.Backend, err)
	}

	if cfg.Store.BreakerEnabled {
		w = NewBreakerWriter(w, cfg.Store.BreakerMaxFailures, cfg.Store.BreakerTimeout)
	}
	return w, nil
}
