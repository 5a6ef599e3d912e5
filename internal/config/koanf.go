// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
// The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/lynx/config.yaml",
	"/etc/lynx/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with every default applied. Defaults are
// loaded first, then overridden by the config file and environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			TrustProxyHeaders: false,
		},
		Pixel: PixelConfig{
			ImagePath:    "",
			WriteTimeout: 20 * time.Second,
		},
		WebSocket: WebSocketConfig{
			SendBufferSize: 256,
			WriteWait:      10 * time.Second,
			PongWait:       60 * time.Second,
			PingPeriod:     54 * time.Second, // must be less than PongWait
			MaxMessageSize: 512 * 1024,
			AllowedOrigins: []string{"*"},
		},
		Store: StoreConfig{
			Backend:            BackendTimestream,
			BreakerEnabled:     true,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		Timestream: TimestreamConfig{
			Region:         "eu-west-1",
			Database:       "lynx_database_test",
			Table:          "lynx_table_test",
			MeasureName:    "page_view",
			MaxRetries:     4,
			RequestTimeout: 20 * time.Second,
			MaxConnections: 1000,
			Endpoint:       "",
		},
		DuckDB: DuckDBConfig{
			Path:  "/data/lynx.duckdb",
			Table: "page_views",
		},
		GeoIP: GeoIPConfig{
			DatabasePath:       "",
			IPAPIEnabled:       false,
			IPAPIURL:           "http://ip-api.com/json",
			IPAPIRatePerMinute: 45, // ip-api.com free tier limit
			Timeout:            2 * time.Second,
			CacheSize:          10000,
			CacheTTL:           24 * time.Hour,
		},
		NATS: NATSConfig{
			Enabled: false,
			URL:     "nats://127.0.0.1:4222",
			Topic:   "lynx.page_views",

			PublishTimeout:     2 * time.Second,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     1000,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from its layered sources and validates it:
//  1. Defaults
//  2. Config file (optional)
//  3. Environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// LYNX_TIMESTREAM_TABLE -> timestream.table, etc. Unmapped variables are ignored.
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file found, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when set from env.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"websocket.allowed_origins",
}

// processSliceFields converts comma-separated strings to slices for the
// known list fields. YAML lists are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// The AWS_REGION and TIMESTREAM_* names are kept for existing deployments.
var envMappings = map[string]string{
	// Server
	"http_host":                "server.host",
	"http_port":                "server.port",
	"http_read_timeout":        "server.read_timeout",
	"http_write_timeout":       "server.write_timeout",
	"http_idle_timeout":        "server.idle_timeout",
	"http_shutdown_timeout":    "server.shutdown_timeout",
	"http_trust_proxy_headers": "server.trust_proxy_headers",

	// Pixel
	"pixel_image_path":    "pixel.image_path",
	"pixel_write_timeout": "pixel.write_timeout",

	// WebSocket
	"ws_send_buffer_size": "websocket.send_buffer_size",
	"ws_write_wait":       "websocket.write_wait",
	"ws_pong_wait":        "websocket.pong_wait",
	"ws_ping_period":      "websocket.ping_period",
	"ws_max_message_size": "websocket.max_message_size",
	"ws_allowed_origins":  "websocket.allowed_origins",

	// Store
	"store_backend":              "store.backend",
	"store_breaker_enabled":      "store.breaker_enabled",
	"store_breaker_max_failures": "store.breaker_max_failures",
	"store_breaker_timeout":      "store.breaker_timeout",

	// Timestream
	"aws_region":                 "timestream.region",
	"timestream_region":          "timestream.region",
	"timestream_database":        "timestream.database",
	"timestream_table":           "timestream.table",
	"timestream_measure_name":    "timestream.measure_name",
	"timestream_max_retries":     "timestream.max_retries",
	"timestream_request_timeout": "timestream.request_timeout",
	"timestream_max_connections": "timestream.max_connections",
	"timestream_endpoint":        "timestream.endpoint",

	// DuckDB
	"duckdb_path":  "duckdb.path",
	"duckdb_table": "duckdb.table",

	// GeoIP
	"geoip_database_path": "geoip.database_path",
	"geoip_ipapi_enabled": "geoip.ipapi_enabled",
	"geoip_ipapi_url":     "geoip.ipapi_url",
	"geoip_ipapi_rate":    "geoip.ipapi_rate_per_minute",
	"geoip_timeout":       "geoip.timeout",
	"geoip_cache_size":    "geoip.cache_size",
	"geoip_cache_ttl":     "geoip.cache_ttl",

	// NATS
	"nats_enabled": "nats.enabled",
	"nats_url":     "nats.url",
	"nats_topic":   "nats.topic",

	"nats_publish_timeout":      "nats.publish_timeout",
	"nats_breaker_max_failures": "nats.breaker_max_failures",
	"nats_breaker_timeout":      "nats.breaker_timeout",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Metrics
	"metrics_enabled": "metrics.enabled",
	"metrics_path":    "metrics.path",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to a koanf path.
// Names may carry an optional LYNX_ prefix. Unknown names map to "" and are
// skipped so unrelated variables never leak into the config.
func envTransformFunc(key string) string {
	key = strings.TrimPrefix(strings.ToLower(key), "lynx_")
	return envMappings[key]
}
