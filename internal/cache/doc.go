// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

// Package cache provides a generic LRU cache with TTL, used to remember
// resolved GeoIP countries so repeat visitors do not hit a provider again.
package cache
