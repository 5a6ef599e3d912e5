// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

/*
Package main is the entry point for the Lynx server.

Lynx serves a 1x1 tracking pixel at /{id}.gif. Every load becomes a page-view
event (identifier, country, referer, user agent) that is written to the
time-series store and pushed to every websocket subscribed at /ws/{id}.

# Startup

 1. Configuration: Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Store: Timestream, DuckDB or none, behind a circuit breaker
 4. GeoIP: MaxMind database and/or ip-api.com, with an LRU cache
 5. Event bus (optional): NATS JetStream through Watermill
 6. Subscription registry and websocket handler
 7. Chi router and HTTP server
 8. Supervisor tree (suture v4)

# Configuration

	HTTP_PORT=8080
	LOG_LEVEL=info
	LOG_FORMAT=json
	STORE_BACKEND=timestream       # timestream, duckdb, none
	AWS_REGION=eu-west-1
	TIMESTREAM_DATABASE=lynx_database_test
	TIMESTREAM_TABLE=lynx_table_test
	GEOIP_DATABASE_PATH=/data/GeoLite2-Country.mmdb
	NATS_ENABLED=false
	HTTP_TRUST_PROXY_HEADERS=false

# Signals

SIGINT and SIGTERM cancel the tree. The HTTP server drains in-flight requests,
the registry closes every subscriber, then the event bus, GeoIP database and
store are closed.
*/
package main
