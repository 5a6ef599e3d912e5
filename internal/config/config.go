// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package config

import (
	"fmt"
	"time"
)

// Store backends.
const (
	BackendTimestream = "timestream"
	BackendDuckDB     = "duckdb"
	BackendNone       = "none"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values from defaultConfig()
//  2. Config File: optional YAML (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment Variables: explicit mapping in envTransformFunc
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Pixel      PixelConfig      `koanf:"pixel"`
	WebSocket  WebSocketConfig  `koanf:"websocket"`
	Store      StoreConfig      `koanf:"store"`
	Timestream TimestreamConfig `koanf:"timestream"`
	DuckDB     DuckDBConfig     `koanf:"duckdb"`
	GeoIP      GeoIPConfig      `koanf:"geoip"`
	NATS       NATSConfig       `koanf:"nats"`
	Security   SecurityConfig   `koanf:"security"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout     time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// TrustProxyHeaders resolves the client address from X-Forwarded-For /
	// X-Real-IP instead of the TCP peer. Only enable behind a trusted proxy.
	TrustProxyHeaders bool `koanf:"trust_proxy_headers"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PixelConfig holds settings for the image endpoint.
type PixelConfig struct {
	// ImagePath overrides the built-in 1x1 GIF. Empty uses the built-in image.
	ImagePath string `koanf:"image_path"`
	// WriteTimeout bounds the synchronous store write per request.
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gt=0"`
}

// WebSocketConfig holds live-subscriber connection settings.
type WebSocketConfig struct {
	SendBufferSize int           `koanf:"send_buffer_size" validate:"gte=1"`
	WriteWait      time.Duration `koanf:"write_wait" validate:"gt=0"`
	PongWait       time.Duration `koanf:"pong_wait" validate:"gt=0"`
	PingPeriod     time.Duration `koanf:"ping_period" validate:"gt=0"`
	MaxMessageSize int64         `koanf:"max_message_size" validate:"gt=0"`
	// AllowedOrigins restricts the Origin header on upgrade. "*" allows any.
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// StoreConfig selects the time-series backend.
type StoreConfig struct {
	Backend            string        `koanf:"backend" validate:"oneof=timestream duckdb none"`
	BreakerEnabled     bool          `koanf:"breaker_enabled"`
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures" validate:"gte=1"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
}

// TimestreamConfig holds Amazon Timestream write settings.
type TimestreamConfig struct {
	Region         string        `koanf:"region" validate:"required,awsregion"`
	Database       string        `koanf:"database" validate:"required"`
	Table          string        `koanf:"table" validate:"required"`
	MeasureName    string        `koanf:"measure_name" validate:"required"`
	MaxRetries     int           `koanf:"max_retries" validate:"gte=0,lte=20"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`
	MaxConnections int           `koanf:"max_connections" validate:"gte=1"`
	// Endpoint overrides the resolved service endpoint (local testing only).
	Endpoint string `koanf:"endpoint" validate:"omitempty,url"`
}

// DuckDBConfig holds the local DuckDB store settings.
type DuckDBConfig struct {
	Path  string `koanf:"path" validate:"required"`
	Table string `koanf:"table" validate:"required"`
}

// GeoIPConfig holds country resolution settings.
type GeoIPConfig struct {
	// DatabasePath points at a MaxMind GeoLite2/GeoIP2 Country or City mmdb.
	DatabasePath string `koanf:"database_path"`

	IPAPIEnabled       bool          `koanf:"ipapi_enabled"`
	IPAPIURL           string        `koanf:"ipapi_url" validate:"omitempty,url"`
	IPAPIRatePerMinute int           `koanf:"ipapi_rate_per_minute" validate:"gte=1"`
	Timeout            time.Duration `koanf:"timeout" validate:"gt=0"`

	CacheSize int           `koanf:"cache_size" validate:"gte=0"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`
}

// NATSConfig holds event bus forwarding settings.
type NATSConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`
	Topic   string `koanf:"topic"`

	// PublishTimeout caps one forward on the pixel request path.
	PublishTimeout     time.Duration `koanf:"publish_timeout"`
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"gte=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}
