// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package models

import (
	"time"

	"github.com/google/uuid"
)

// Unknown is the placeholder used whenever a derived attribute (country,
// referer, user-agent field) cannot be determined. It is never empty so that
// every dimension written to the time-series store has a value.
const Unknown = "unknown"

// MeasurePageView is the measure name of a pixel load in the time-series store.
const MeasurePageView = "page_view"

// User-agent field keys produced by the classifier.
const (
	UAName      = "name"
	UAVersion   = "version"
	UAOS        = "os"
	UAOSVersion = "os_version"
	UACategory  = "category"
	UADevice    = "device"
)

// UserAgent maps classifier field names to values.
type UserAgent map[string]string

// Name returns the browser name, or Unknown.
func (ua UserAgent) Name() string {
	if name := ua[UAName]; name != "" {
		return name
	}
	return Unknown
}

// Clone returns a copy that can be handed to another goroutine.
func (ua UserAgent) Clone() UserAgent {
	out := make(UserAgent, len(ua))
	for k, v := range ua {
		out[k] = v
	}
	return out
}

// TrackingEvent is one pixel load. It lives for the duration of a request:
// it is written to the time-series store, forwarded to live subscribers and
// then discarded.
type TrackingEvent struct {
	ID        uuid.UUID
	Country   string
	Referer   string
	UserAgent UserAgent
	Timestamp time.Time
}

// TimestampMillis returns the capture time in milliseconds since the Unix epoch.
func (e *TrackingEvent) TimestampMillis() int64 {
	return e.Timestamp.UnixMilli()
}

// Payload renders the event as pushed to websocket subscribers.
func (e *TrackingEvent) Payload() EventPayload {
	return EventPayload{
		ID:        e.ID.String(),
		Country:   e.Country,
		Referer:   e.Referer,
		UserAgent: e.UserAgent.Clone(),
	}
}

// EventPayload is the JSON document delivered to subscribers of an identifier.
//
//	{"id":"123e4567-...","country":"US","referer":"unknown","userAgent":{"name":"Chrome",...}}
type EventPayload struct {
	ID        string    `json:"id"`
	Country   string    `json:"country"`
	Referer   string    `json:"referer"`
	UserAgent UserAgent `json:"userAgent"`
}

// ForwardedEvent is the message published on the event bus. It carries the
// capture time in addition to the subscriber payload.
type ForwardedEvent struct {
	EventPayload
	TimestampMs int64 `json:"timestamp"`
}
