// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package timeseries

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/adrianomelo/lynx/internal/logging"
	"github.com/adrianomelo/lynx/internal/metrics"
	"github.com/adrianomelo/lynx/internal/models"
)

// BreakerWriter guards a Writer with a circuit breaker. After maxFailures
// consecutive failures writes are rejected immediately with
// gobreaker.ErrOpenState until timeout elapses, so a dead store does not
// add its full request timeout to every pixel load.
type BreakerWriter struct {
	inner Writer
	cb    *gobreaker.CircuitBreaker[struct{}]
	name  string
}

// NewBreakerWriter wraps inner.
func NewBreakerWriter(inner Writer, maxFailures uint32, timeout time.Duration) *BreakerWriter {
	name := "store-" + inner.Name()

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= maxFailures
			if trip {
				logging.Warn().Str("breaker", name).Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("opening circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state transition")

			metrics.SetCircuitBreakerState(name, to.String())
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &BreakerWriter{inner: inner, cb: cb, name: name}
}

// Name reports the wrapped backend so metrics stay keyed by store.
func (b *BreakerWriter) Name() string {
	return b.inner.Name()
}

func (b *BreakerWriter) Write(ctx context.Context, event *models.TrackingEvent) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.inner.Write(ctx, event)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, metrics.ResultRejected).Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, metrics.ResultFailure).Inc()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(b.cb.Counts().ConsecutiveFailures))
		}
		return err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, metrics.ResultSuccess).Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return nil
}

// State returns the current breaker state.
func (b *BreakerWriter) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerWriter) Close() error {
	return b.inner.Close()
}

// Available reports whether w is accepting writes. Only a BreakerWriter
// with an open circuit is unavailable.
func Available(w Writer) bool {
	b, ok := w.(*BreakerWriter)
	if !ok {
		return true
	}
	return b.State() != gobreaker.StateOpen
}
