// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/adrianomelo/lynx/internal/config"
	"github.com/adrianomelo/lynx/internal/models"
	"github.com/adrianomelo/lynx/internal/pixel"
	"github.com/adrianomelo/lynx/internal/useragent"
	"github.com/adrianomelo/lynx/internal/websocket"
)

const testTrackingID = "123e4567-e89b-12d3-a456-426614174000"

type recordingStore struct {
	mu     sync.Mutex
	events []*models.TrackingEvent
}

func (s *recordingStore) Write(_ context.Context, event *models.TrackingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingStore) Name() string { return "recording" }

func (s *recordingStore) Close() error { return nil }

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

type staticGeo map[string]string

func (g staticGeo) Country(_ context.Context, remoteAddr string) string {
	if c, ok := g[remoteAddr]; ok {
		return c
	}
	return models.Unknown
}

type testEnv struct {
	handler  http.Handler
	store    *recordingStore
	registry *websocket.Registry
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Security.CORSOrigins = []string{"*"}
	cfg.Security.RateLimitReqs = 1000
	cfg.Security.RateLimitWindow = time.Minute
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"
	return cfg
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()

	store := &recordingStore{}
	registry := websocket.NewRegistry()
	svc := pixel.NewService(pixel.Deps{
		Store:     store,
		Publisher: registry,
		Geo:       staticGeo{"8.8.8.8": "US"},
		UA:        useragent.NewClassifier(),
	}, pixel.DefaultImage(), time.Second)

	handler := NewHandler(HandlerDeps{
		Pixel:     svc,
		WebSocket: websocket.NewHandler(registry, websocket.DefaultClientConfig(), nil),
		Registry:  registry,
		Store:     store,
		Version:   "test",
	})

	return &testEnv{
		handler:  NewRouter(handler, cfg).SetupChi(),
		store:    store,
		registry: registry,
	}
}

func (e *testEnv) do(t *testing.T, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, body io.Reader) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		t.Fatalf("response is not a JSON envelope: %v", err)
	}
	return resp
}
