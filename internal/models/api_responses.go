// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package models

import (
	"time"
)

// APIResponse is the JSON envelope for every non-image HTTP response.
//
//	{
//	  "status": "error",
//	  "error": {"code": "INVALID_IDENTIFIER", "message": "tracking id must be a UUID"},
//	  "metadata": {"timestamp": "2026-10-18T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata accompanies every APIResponse.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError carries a machine-readable code and a human-readable message.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is returned by the readiness endpoint.
type HealthStatus struct {
	Status             string  `json:"status"`
	Version            string  `json:"version"`
	StoreBackend       string  `json:"store_backend"`
	StoreAvailable     bool    `json:"store_available"`
	EventBusEnabled    bool    `json:"event_bus_enabled"`
	TrackedIdentifiers int     `json:"tracked_identifiers"`
	Subscribers        int     `json:"subscribers"`
	Uptime             float64 `json:"uptime_seconds"`
}
