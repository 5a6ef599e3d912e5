// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

/*
Package api exposes Lynx over HTTP using the Chi router.

Routes:

	GET  /{id}.gif      tracking pixel (400 when id is not a UUID)
	GET  /ws/{id}       websocket subscription to events for id
	GET  /health/live   liveness probe
	GET  /health/ready  readiness with store and subscriber state
	GET  /metrics       Prometheus metrics (metrics.enabled)

Middleware, outermost first: request id, real IP (server.trust_proxy_headers),
panic recovery, access log, CORS, Prometheus. The websocket route
is rate limited per client IP with go-chi/httprate; the pixel route never is.

Non-image responses use the models.APIResponse JSON envelope.
*/
package api
