// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package timeseries

import (
	"context"
	"errors"

	"github.com/adrianomelo/lynx/internal/models"
)

// ErrWriterClosed is returned by Write after Close.
var ErrWriterClosed = errors.New("timeseries: writer closed")

// Writer persists tracking events. Implementations must be safe for
// concurrent use; every pixel request calls Write from its own goroutine.
type Writer interface {
	// Write stores one event. The caller bounds it with a deadline on ctx.
	Write(ctx context.Context, event *models.TrackingEvent) error

	// Name identifies the backend in logs and metrics.
	Name() string

	Close() error
}

// NopWriter discards every event. Used when store.backend is "none".
type NopWriter struct{}

func (NopWriter) Write(context.Context, *models.TrackingEvent) error { return nil }

func (NopWriter) Name() string { return "none" }

func (NopWriter) Close() error { return nil }
