// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adrianomelo/lynx/internal/logging"
)

// WebSocket serves GET /ws/{id}. The identifier is validated before the
// upgrade so a bad id gets a normal 400 response.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	trackingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidIdentifier, "tracking id must be a UUID", nil)
		return
	}

	if err := h.deps.WebSocket.Serve(w, r, trackingID); err != nil {
		// The upgrader has already written the HTTP error.
		logging.Ctx(r.Context()).Debug().Err(err).Str("id", trackingID.String()).Msg("websocket upgrade rejected")
		return
	}
	logging.Ctx(r.Context()).Debug().Str("id", trackingID.String()).Msg("websocket subscriber connected")
}
