// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/adrianomelo/lynx/internal/logging"
	"github.com/adrianomelo/lynx/internal/pixel"
)

// Pixel serves GET /{id}.gif.
func (h *Handler) Pixel(w http.ResponseWriter, r *http.Request) {
	img, err := h.deps.Pixel.HandlePixelRequest(r.Context(), chi.URLParam(r, "id"), r.Header, r.RemoteAddr)
	if err != nil {
		if errors.Is(err, pixel.ErrInvalidIdentifier) {
			respondError(w, r, http.StatusBadRequest, ErrCodeInvalidIdentifier, "tracking id must be a UUID", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "internal error", err)
		return
	}

	header := w.Header()
	header.Set("Content-Type", img.ContentType)
	header.Set("Content-Length", strconv.Itoa(len(img.Data)))
	// Every open of the page must reach the server.
	header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	header.Set("Pragma", "no-cache")
	header.Set("Expires", "0")

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.Data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("pixel write failed")
	}
}
