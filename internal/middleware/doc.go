// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

// Package middleware provides the HTTP middleware installed on the Lynx router:
// RequestID, AccessLog and PrometheusMetrics.
//
// All three are plain func(http.Handler) http.Handler values so they plug
// into chi's Use. The response wrapper they share forwards http.Hijacker, so
// they can sit in front of the websocket upgrade route.
//
// Recommended order:
//
//	r.Use(middleware.RequestID)
//	r.Use(middleware.AccessLog)
//	r.Use(middleware.PrometheusMetrics)
package middleware
