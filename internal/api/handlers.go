// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package api

import (
	"net/http"
	"time"

	"github.com/adrianomelo/lynx/internal/pixel"
	"github.com/adrianomelo/lynx/internal/timeseries"
	"github.com/adrianomelo/lynx/internal/websocket"
)

// HandlerDeps are the collaborators of a Handler.
type HandlerDeps struct {
	Pixel     *pixel.Service
	WebSocket *websocket.Handler
	Registry  *websocket.Registry
	Store     timeseries.Writer
	// EventBusEnabled is reported by the readiness endpoint.
	EventBusEnabled bool
	Version         string
}

// Handler serves the HTTP endpoints.
type Handler struct {
	deps      HandlerDeps
	startTime time.Time
}

// NewHandler creates a Handler.
func NewHandler(deps HandlerDeps) *Handler {
	if deps.Version == "" {
		deps.Version = "dev"
	}
	return &Handler{
		deps:      deps,
		startTime: time.Now(),
	}
}

// NotFound renders unknown routes with the JSON envelope.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "route not found", nil)
}

// MethodNotAllowed renders wrong-method requests with the JSON envelope.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
}
