// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

// Package pixel implements the tracking pixel request: identifier
// validation, enrichment (country, user agent, referer), persistence and
// fan-out to live subscribers.
//
//	img, err := svc.HandlePixelRequest(ctx, chi.URLParam(r, "id"), r.Header, r.RemoteAddr)
//	if errors.Is(err, pixel.ErrInvalidIdentifier) {
//		// 400
//	}
package pixel
