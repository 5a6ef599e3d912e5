// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

/*
Package metrics defines the Prometheus collectors exported at /metrics.

Collectors are registered on the default registry through promauto at init
time; callers use the Record* helpers rather than touching collectors.

Pixel and HTTP:
  - pixel_requests_total{result}
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests

Store:
  - store_writes_total{backend,result}
  - store_write_duration_seconds{backend}

Fan-out:
  - fanout_deliveries_total
  - fanout_drops_total{reason}
  - websocket_connections_active
  - tracked_identifiers

GeoIP and event bus:
  - geoip_lookups_total{provider,result}
  - geoip_cache_hits_total, geoip_cache_misses_total
  - eventbus_publish_total{result}

Circuit breaker:
  - circuit_breaker_state{name} (0=closed, 1=half-open, 2=open)
  - circuit_breaker_requests_total{name,result}
  - circuit_breaker_consecutive_failures{name}
  - circuit_breaker_state_transitions_total{name,from_state,to_state}

The endpoint label on HTTP metrics is the chi route pattern ("/{id}.gif"),
never the raw path, to keep cardinality bounded.
*/
package metrics
