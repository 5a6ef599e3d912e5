// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

/*
Package config loads Lynx configuration with Koanf v2.

Sources are layered, later ones winning:

 1. Built-in defaults (defaultConfig)
 2. A YAML file: $CONFIG_PATH, else config.yaml / config.yml in the working
    directory, else /etc/lynx/config.yaml
 3. Environment variables, through an explicit name table

Example config.yaml:

	server:
	  port: 8080
	store:
	  backend: timestream
	timestream:
	  region: eu-west-1
	  database: lynx
	  table: page_views
	geoip:
	  database_path: /data/GeoLite2-Country.mmdb
	nats:
	  enabled: true
	  url: nats://nats:4222

Common environment variables (an optional LYNX_ prefix is accepted):

	HTTP_PORT, STORE_BACKEND, AWS_REGION, TIMESTREAM_DATABASE,
	TIMESTREAM_TABLE, DUCKDB_PATH, GEOIP_DATABASE_PATH, NATS_ENABLED,
	NATS_URL, CORS_ORIGINS, LOG_LEVEL, LOG_FORMAT

Durations accept Go syntax ("20s", "1m"). List values accept
comma-separated strings from the environment.

Validate runs the validate struct tags through internal/validation and then
checks cross-field rules such as ping period versus pong wait.
*/
package config
