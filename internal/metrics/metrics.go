// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pixel results.
const (
	PixelServed            = "served"
	PixelInvalidIdentifier = "invalid_identifier"
)

// Store write results.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultRejected = "rejected"
)

// Fan-out drop reasons.
const (
	DropBufferFull = "buffer_full"
	DropClosed     = "closed"
)

var (
	// Pixel Metrics
	PixelRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pixel_requests_total",
			Help: "Total number of tracking pixel requests",
		},
		[]string{"result"}, // "served", "invalid_identifier"
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Store Metrics
	StoreWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_writes_total",
			Help: "Total number of time-series record writes",
		},
		[]string{"backend", "result"},
	)

	StoreWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_write_duration_seconds",
			Help:    "Duration of time-series record writes in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	// Fan-out / WebSocket Metrics
	FanoutDeliveriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fanout_deliveries_total",
			Help: "Total number of events queued to live subscribers",
		},
	)

	FanoutDropsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanout_drops_total",
			Help: "Total number of subscribers dropped during fan-out",
		},
		[]string{"reason"}, // "buffer_full", "closed"
	)

	WSConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Number of open websocket subscriber connections",
		},
	)

	TrackedIdentifiers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracked_identifiers",
			Help: "Number of identifiers with at least one live subscriber",
		},
	)

	// GeoIP Metrics
	GeoIPLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geoip_lookups_total",
			Help: "Total number of GeoIP lookups by provider and result",
		},
		[]string{"provider", "result"}, // result: "hit", "miss", "error"
	)

	GeoIPCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geoip_cache_hits_total",
			Help: "Total number of GeoIP cache hits",
		},
	)

	GeoIPCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "geoip_cache_misses_total",
			Help: "Total number of GeoIP cache misses",
		},
	)

	// Event Bus Metrics
	EventBusPublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventbus_publish_total",
			Help: "Total number of events forwarded to the event bus",
		},
		[]string{"result"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordPixelRequest records the outcome of a pixel request.
func RecordPixelRequest(result string) {
	PixelRequestsTotal.WithLabelValues(result).Inc()
}

// RecordAPIRequest records an HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight HTTP requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordStoreWrite records one time-series write.
func RecordStoreWrite(backend string, duration time.Duration, err error) {
	StoreWriteDuration.WithLabelValues(backend).Observe(duration.Seconds())
	if err != nil {
		StoreWritesTotal.WithLabelValues(backend, ResultFailure).Inc()
		return
	}
	StoreWritesTotal.WithLabelValues(backend, ResultSuccess).Inc()
}

// RecordFanoutDelivery records an event queued to a subscriber.
func RecordFanoutDelivery() {
	FanoutDeliveriesTotal.Inc()
}

// RecordFanoutDrop records a subscriber dropped during fan-out.
func RecordFanoutDrop(reason string) {
	FanoutDropsTotal.WithLabelValues(reason).Inc()
}

// SetRegistrySize updates the registry gauges.
func SetRegistrySize(identifiers, connections int) {
	TrackedIdentifiers.Set(float64(identifiers))
	WSConnectionsActive.Set(float64(connections))
}

// RecordGeoIPLookup records a provider lookup. result is "hit", "miss" or "error".
func RecordGeoIPLookup(provider, result string) {
	GeoIPLookupsTotal.WithLabelValues(provider, result).Inc()
}

// RecordGeoIPCache records a cache hit or miss.
func RecordGeoIPCache(hit bool) {
	if hit {
		GeoIPCacheHits.Inc()
	} else {
		GeoIPCacheMisses.Inc()
	}
}

// RecordEventBusPublish records an event bus publish attempt.
func RecordEventBusPublish(err error) {
	if err != nil {
		EventBusPublishTotal.WithLabelValues(ResultFailure).Inc()
		return
	}
	EventBusPublishTotal.WithLabelValues(ResultSuccess).Inc()
}

// SetCircuitBreakerState records a breaker state by its gobreaker name
// ("closed", "half-open", "open").
func SetCircuitBreakerState(name, state string) {
	value := -1.0
	switch state {
	case "closed":
		value = 0
	case "half-open":
		value = 1
	case "open":
		value = 2
	}
	CircuitBreakerState.WithLabelValues(name).Set(value)
}
