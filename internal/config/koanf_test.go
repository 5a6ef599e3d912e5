// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// TestDefaultConfig pins the production defaults (eu-west-1, page_view, 20s writes).
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Store.Backend != BackendTimestream {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendTimestream)
	}
	if cfg.Timestream.Region != "eu-west-1" {
		t.Errorf("Timestream.Region = %q, want eu-west-1", cfg.Timestream.Region)
	}
	if cfg.Timestream.Database != "lynx_database_test" {
		t.Errorf("Timestream.Database = %q", cfg.Timestream.Database)
	}
	if cfg.Timestream.Table != "lynx_table_test" {
		t.Errorf("Timestream.Table = %q", cfg.Timestream.Table)
	}
	if cfg.Timestream.MeasureName != "page_view" {
		t.Errorf("Timestream.MeasureName = %q, want page_view", cfg.Timestream.MeasureName)
	}
	if cfg.Timestream.MaxRetries != 4 {
		t.Errorf("Timestream.MaxRetries = %d, want 4", cfg.Timestream.MaxRetries)
	}
	if cfg.Timestream.RequestTimeout != 20*time.Second {
		t.Errorf("Timestream.RequestTimeout = %v, want 20s", cfg.Timestream.RequestTimeout)
	}
	if cfg.Timestream.MaxConnections != 1000 {
		t.Errorf("Timestream.MaxConnections = %d, want 1000", cfg.Timestream.MaxConnections)
	}
	if cfg.WebSocket.SendBufferSize != 256 {
		t.Errorf("WebSocket.SendBufferSize = %d, want 256", cfg.WebSocket.SendBufferSize)
	}
	if cfg.NATS.Enabled {
		t.Error("NATS.Enabled should be false by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := defaultConfig()
	if cfg.DuckDB != want.DuckDB {
		t.Errorf("DuckDB = %+v, want %+v", cfg.DuckDB, want.DuckDB)
	}
	if cfg.WebSocket.PingPeriod != want.WebSocket.PingPeriod {
		t.Errorf("WebSocket.PingPeriod = %v, want %v", cfg.WebSocket.PingPeriod, want.WebSocket.PingPeriod)
	}
	if cfg.Store.BreakerMaxFailures != want.Store.BreakerMaxFailures {
		t.Errorf("Store.BreakerMaxFailures = %d, want %d", cfg.Store.BreakerMaxFailures, want.Store.BreakerMaxFailures)
	}
	if !reflect.DeepEqual(cfg.WebSocket.AllowedOrigins, want.WebSocket.AllowedOrigins) {
		t.Errorf("WebSocket.AllowedOrigins = %v, want %v", cfg.WebSocket.AllowedOrigins, want.WebSocket.AllowedOrigins)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORE_BACKEND", "duckdb")
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("LYNX_TIMESTREAM_TABLE", "events")
	t.Setenv("PIXEL_WRITE_TIMEOUT", "5s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Store.Backend != BackendDuckDB {
		t.Errorf("Store.Backend = %q, want duckdb", cfg.Store.Backend)
	}
	if cfg.Timestream.Region != "us-east-1" {
		t.Errorf("Timestream.Region = %q, want us-east-1", cfg.Timestream.Region)
	}
	if cfg.Timestream.Table != "events" {
		t.Errorf("Timestream.Table = %q, want events", cfg.Timestream.Table)
	}
	if cfg.Pixel.WriteTimeout != 5*time.Second {
		t.Errorf("Pixel.WriteTimeout = %v, want 5s", cfg.Pixel.WriteTimeout)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, want) {
		t.Errorf("Security.CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 7000
store:
  backend: none
timestream:
  database: from_file
websocket:
  allowed_origins:
    - https://dash.example
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("TIMESTREAM_DATABASE", "from_env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000 from file", cfg.Server.Port)
	}
	if cfg.Store.Backend != BackendNone {
		t.Errorf("Store.Backend = %q, want none", cfg.Store.Backend)
	}
	if cfg.Timestream.Database != "from_env" {
		t.Errorf("env should win over file, Timestream.Database = %q", cfg.Timestream.Database)
	}
	if cfg.Timestream.Table != "lynx_table_test" {
		t.Errorf("untouched keys keep defaults, Timestream.Table = %q", cfg.Timestream.Table)
	}
	if !reflect.DeepEqual(cfg.WebSocket.AllowedOrigins, []string{"https://dash.example"}) {
		t.Errorf("WebSocket.AllowedOrigins = %v", cfg.WebSocket.AllowedOrigins)
	}
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("STORE_BACKEND", "cassandra")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject an unknown store backend")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"AWS_REGION", "timestream.region"},
		{"LYNX_AWS_REGION", "timestream.region"},
		{"TIMESTREAM_MAX_RETRIES", "timestream.max_retries"},
		{"GEOIP_DATABASE_PATH", "geoip.database_path"},
		{"NATS_ENABLED", "nats.enabled"},
		{"NATS_PUBLISH_TIMEOUT", "nats.publish_timeout"},
		{"NATS_BREAKER_MAX_FAILURES", "nats.breaker_max_failures"},
		{"WS_ALLOWED_ORIGINS", "websocket.allowed_origins"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile_EnvPathMissing(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() = %q, want empty for missing file", got)
	}
}
