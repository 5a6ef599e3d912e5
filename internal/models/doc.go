// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

// Package models defines the data types shared between the pixel handler,
// the subscription registry, the stores and the HTTP layer.
//
// TrackingEvent is built once per pixel request. EventPayload is its
// subscriber-facing JSON form and ForwardedEvent the event-bus form.
// APIResponse is the envelope for JSON HTTP responses.
package models
