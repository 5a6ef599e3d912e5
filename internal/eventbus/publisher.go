// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

// Package eventbus forwards tracking events to NATS JetStream through
// Watermill so other services can consume the page-view stream.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/adrianomelo/lynx/internal/config"
	"github.com/adrianomelo/lynx/internal/logging"
	"github.com/adrianomelo/lynx/internal/metrics"
	"github.com/adrianomelo/lynx/internal/models"
)

// ErrPublisherClosed is returned by Forward after Close.
var ErrPublisherClosed = errors.New("eventbus: publisher closed")

// Metadata keys set on every forwarded message.
const (
	MetadataTrackingID = "tracking_id"
	MetadataCountry    = "country"
)

// Options bound how long a forward may hold up a pixel request.
type Options struct {
	// PublishTimeout caps a single publish, including JetStream retries.
	PublishTimeout time.Duration
	// BreakerMaxFailures consecutive failures open the circuit.
	BreakerMaxFailures uint32
	// BreakerTimeout is how long the circuit stays open before a probe.
	BreakerTimeout time.Duration
}

// DefaultOptions returns the forwarding limits used when none are configured.
func DefaultOptions() Options {
	return Options{
		PublishTimeout:     2 * time.Second,
		BreakerMaxFailures: 5,
		BreakerTimeout:     30 * time.Second,
	}
}

// Publisher forwards events to a single topic. Publishes go through a
// circuit breaker so a NATS outage costs at most BreakerMaxFailures slow
// requests before forwards are skipped outright.
type Publisher struct {
	publisher      message.Publisher
	topic          string
	publishTimeout time.Duration
	cb             *gobreaker.CircuitBreaker[struct{}]

	mu     sync.RWMutex
	closed bool
}

// NewPublisher connects to NATS and returns a JetStream-backed publisher.
// The stream covering cfg.Topic must already exist.
func NewPublisher(cfg *config.NATSConfig) (*Publisher, error) {
	logger := watermill.NewSlogLogger(logging.NewSlogLogger().With("component", "eventbus"))

	natsOpts := []natsgo.Option{
		natsgo.Name("lynx"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return NewWithPublisher(pub, cfg.Topic, Options{
		PublishTimeout:     cfg.PublishTimeout,
		BreakerMaxFailures: cfg.BreakerMaxFailures,
		BreakerTimeout:     cfg.BreakerTimeout,
	}), nil
}

// NewWithPublisher wraps an existing Watermill publisher. Zero fields in
// opts take DefaultOptions values.
func NewWithPublisher(pub message.Publisher, topic string, opts Options) *Publisher {
	defaults := DefaultOptions()
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = defaults.PublishTimeout
	}
	if opts.BreakerMaxFailures == 0 {
		opts.BreakerMaxFailures = defaults.BreakerMaxFailures
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = defaults.BreakerTimeout
	}

	return &Publisher{
		publisher:      pub,
		topic:          topic,
		publishTimeout: opts.PublishTimeout,
		cb:             newBreaker(breakerName, opts.BreakerMaxFailures, opts.BreakerTimeout),
	}
}

// breakerName labels the event bus breaker in logs and metrics.
const breakerName = "eventbus"

func newBreaker(name string, maxFailures uint32, timeout time.Duration) *gobreaker.CircuitBreaker[struct{}] {
	metrics.SetCircuitBreakerState(name, gobreaker.StateClosed.String())
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("event bus circuit breaker state transition")

			metrics.SetCircuitBreakerState(name, to.String())
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})
}

// State returns the event bus breaker state.
func (p *Publisher) State() gobreaker.State {
	return p.cb.State()
}

// Topic returns the topic events are published to.
func (p *Publisher) Topic() string {
	return p.topic
}

// Forward publishes event as a models.ForwardedEvent JSON document. It
// returns within PublishTimeout, or immediately with gobreaker.ErrOpenState
// while the circuit is open.
func (p *Publisher) Forward(ctx context.Context, event *models.TrackingEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	data, err := json.Marshal(models.ForwardedEvent{
		EventPayload: event.Payload(),
		TimestampMs:  event.TimestampMillis(),
	})
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	msg.Metadata.Set(MetadataTrackingID, event.ID.String())
	msg.Metadata.Set(MetadataCountry, event.Country)

	_, err = p.cb.Execute(func() (struct{}, error) {
		return struct{}{}, p.publish(ctx, msg)
	})
	metrics.RecordEventBusPublish(err)
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, metrics.ResultSuccess).Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)
		return nil
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, metrics.ResultRejected).Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, metrics.ResultFailure).Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(float64(p.cb.Counts().ConsecutiveFailures))
	}
	return fmt.Errorf("publish to %s: %w", p.topic, err)
}

// publish runs the Watermill publish with a deadline. The JetStream publish
// does not take a context, so a stalled call is abandoned rather than
// cancelled; the breaker bounds how many can pile up.
func (p *Publisher) publish(ctx context.Context, msg *message.Message) error {
	ctx, cancel := context.WithTimeout(ctx, p.publishTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- p.publisher.Publish(p.topic, msg)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("publish timed out after %s: %w", p.publishTimeout, ctx.Err())
	}
}

// Close shuts down the underlying publisher. Safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
