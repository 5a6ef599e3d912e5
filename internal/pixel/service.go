// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package pixel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adrianomelo/lynx/internal/logging"
	"github.com/adrianomelo/lynx/internal/metrics"
	"github.com/adrianomelo/lynx/internal/models"
	"github.com/adrianomelo/lynx/internal/timeseries"
	"github.com/adrianomelo/lynx/internal/websocket"
)

// ErrInvalidIdentifier is returned when the path identifier is not a UUID.
var ErrInvalidIdentifier = errors.New("invalid tracking identifier")

// DefaultWriteTimeout bounds the store write when none is configured.
const DefaultWriteTimeout = 20 * time.Second

// CountryResolver maps a client address to a country code or models.Unknown.
type CountryResolver interface {
	Country(ctx context.Context, remoteAddr string) string
}

// UAClassifier maps a User-Agent header value to classifier fields.
type UAClassifier interface {
	Classify(raw string) models.UserAgent
}

// Forwarder receives a copy of every event (event bus sink). Optional.
type Forwarder interface {
	Forward(ctx context.Context, event *models.TrackingEvent) error
}

// Deps are the collaborators of a Service. Store, Publisher, Geo and UA
// are required; Forwarder may be nil.
type Deps struct {
	Store     timeseries.Writer
	Publisher websocket.Publisher
	Geo       CountryResolver
	UA        UAClassifier
	Forwarder Forwarder
}

// Service turns pixel loads into tracking events.
type Service struct {
	deps         Deps
	image        Image
	writeTimeout time.Duration
	now          func() time.Time
	log          zerolog.Logger
}

// NewService creates a Service that answers every valid request with image.
func NewService(deps Deps, image Image, writeTimeout time.Duration) *Service {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &Service{
		deps:         deps,
		image:        image,
		writeTimeout: writeTimeout,
		now:          time.Now,
		log:          logging.WithComponent("pixel"),
	}
}

// Image returns the configured pixel.
func (s *Service) Image() Image {
	return s.image
}

// HandlePixelRequest validates rawID, builds the event, persists it,
// publishes it to live subscribers and returns the pixel.
//
// Only ErrInvalidIdentifier is ever returned, and in that case nothing is
// written or published. Store, fan-out and event bus failures are logged
// and counted but never reach the caller.
func (s *Service) HandlePixelRequest(ctx context.Context, rawID string, headers http.Header, remoteAddr string) (Image, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		metrics.RecordPixelRequest(metrics.PixelInvalidIdentifier)
		return Image{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, rawID)
	}

	event := s.buildEvent(ctx, id, headers, remoteAddr)

	// The write outlives a client that hangs up after receiving headers.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()

	s.persist(writeCtx, event)
	delivered := s.deps.Publisher.Publish(event.ID, event.Payload())
	s.forward(writeCtx, event)

	logging.Ctx(ctx).Debug().
		Str("id", event.ID.String()).
		Str("country", event.Country).
		Int("delivered", delivered).
		Msg("pixel served")

	metrics.RecordPixelRequest(metrics.PixelServed)
	return s.image, nil
}

func (s *Service) buildEvent(ctx context.Context, id uuid.UUID, headers http.Header, remoteAddr string) *models.TrackingEvent {
	referer := headers.Get("Referer")
	if referer == "" {
		referer = models.Unknown
	}

	return &models.TrackingEvent{
		ID:        id,
		Country:   s.deps.Geo.Country(ctx, remoteAddr),
		Referer:   referer,
		UserAgent: s.deps.UA.Classify(headers.Get("User-Agent")),
		Timestamp: s.now(),
	}
}

func (s *Service) persist(ctx context.Context, event *models.TrackingEvent) {
	start := time.Now()
	err := s.deps.Store.Write(ctx, event)
	metrics.RecordStoreWrite(s.deps.Store.Name(), time.Since(start), err)
	if err != nil {
		s.log.Warn().Err(err).
			Str("backend", s.deps.Store.Name()).
			Str("id", event.ID.String()).
			Msg("event write failed")
	}
}

func (s *Service) forward(ctx context.Context, event *models.TrackingEvent) {
	if s.deps.Forwarder == nil {
		return
	}
	if err := s.deps.Forwarder.Forward(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("id", event.ID.String()).Msg("event bus forward failed")
	}
}
