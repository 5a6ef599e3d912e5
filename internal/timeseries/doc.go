// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

/*
Package timeseries persists tracking events.

Backends implement Writer:

  - TimestreamWriter: Amazon Timestream via aws-sdk-go-v2 (default)
  - DuckDBWriter: local DuckDB file via database/sql
  - NopWriter: discards events (store.backend: none)

BreakerWriter wraps any backend with a sony/gobreaker circuit breaker.

Each event becomes one record with measure "page_view", dimensions country,
referer, userAgentName and id, a BOOLEAN measure value of "true" and a
millisecond timestamp.
*/
package timeseries
