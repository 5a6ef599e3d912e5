// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

/*
Package geoip resolves client addresses to two-letter country codes.

Providers:

  - MaxMindDBProvider: local GeoLite2/GeoIP2 mmdb via oschwald/geoip2-golang
  - IPAPIProvider: ip-api.com over HTTP, throttled with golang.org/x/time/rate

Resolver chains providers in order, short-circuits private and loopback
addresses, and caches answers in an LRU with TTL. Its Country method never
returns an error: lookup degradation always yields models.Unknown.

	resolver := geoip.NewResolver(10000, 24*time.Hour, mmdb, ipapi)
	country := resolver.Country(ctx, r.RemoteAddr) // "US" or "unknown"
*/
package geoip
