// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package api

import (
	"net/http"
	"time"

	"github.com/adrianomelo/lynx/internal/models"
	"github.com/adrianomelo/lynx/internal/timeseries"
)

// HealthLive reports that the process is up, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady reports store and subscriber state. Pixels are served even
// when the store is failing, so a degraded store does not fail readiness.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	storeName := timeseries.NopWriter{}.Name()
	storeAvailable := true
	if h.deps.Store != nil {
		storeName = h.deps.Store.Name()
		storeAvailable = timeseries.Available(h.deps.Store)
	}

	var identifiers, subscribers int
	if h.deps.Registry != nil {
		identifiers, subscribers = h.deps.Registry.Counts()
	}

	status := "ready"
	if !storeAvailable {
		status = "degraded"
	}

	respondSuccess(w, r, models.HealthStatus{
		Status:             status,
		Version:            h.deps.Version,
		StoreBackend:       storeName,
		StoreAvailable:     storeAvailable,
		EventBusEnabled:    h.deps.EventBusEnabled,
		TrackedIdentifiers: identifiers,
		Subscribers:        subscribers,
		Uptime:             time.Since(h.startTime).Seconds(),
	})
}
