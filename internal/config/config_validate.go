// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/adrianomelo/lynx/internal/validation"
)

// Validate checks field constraints (validate struct tags) and then the
// cross-field rules that tags cannot express.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateWebSocket(); err != nil {
		return err
	}

	if err := c.validatePixel(); err != nil {
		return err
	}

	if err := c.validateRequestBudget(); err != nil {
		return err
	}

	if err := c.validateNATS(); err != nil {
		return err
	}

	return c.validateMetrics()
}

func (c *Config) validateWebSocket() error {
	if c.WebSocket.PingPeriod >= c.WebSocket.PongWait {
		return fmt.Errorf("websocket.ping_period (%s) must be less than websocket.pong_wait (%s)",
			c.WebSocket.PingPeriod, c.WebSocket.PongWait)
	}
	return nil
}

// validatePixel fails early when a custom image was configured but cannot be read.
func (c *Config) validatePixel() error {
	if c.Pixel.ImagePath == "" {
		return nil
	}
	info, err := os.Stat(c.Pixel.ImagePath)
	if err != nil {
		return fmt.Errorf("pixel.image_path: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("pixel.image_path %q is a directory", c.Pixel.ImagePath)
	}
	return nil
}

// validateRequestBudget keeps the work done before the pixel body is written
// (GeoIP lookup, store write, event bus forward) inside server.write_timeout.
func (c *Config) validateRequestBudget() error {
	budget := c.Pixel.WriteTimeout
	if c.GeoIP.IPAPIEnabled {
		budget += c.GeoIP.Timeout
	}
	if c.NATS.Enabled {
		budget += c.NATS.PublishTimeout
	}
	if budget >= c.Server.WriteTimeout {
		return fmt.Errorf("pixel.write_timeout plus geoip.timeout and nats.publish_timeout (%s) must be less than server.write_timeout (%s)",
			budget, c.Server.WriteTimeout)
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when nats.enabled=true")
	}
	u, err := url.Parse(c.NATS.URL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("nats.url %q is not a valid URL", c.NATS.URL)
	}
	if u.Scheme != "nats" && u.Scheme != "tls" {
		return fmt.Errorf("nats.url must use nats:// or tls://, got %q", u.Scheme)
	}
	if strings.TrimSpace(c.NATS.Topic) == "" {
		return fmt.Errorf("nats.topic is required when nats.enabled=true")
	}
	if c.NATS.PublishTimeout <= 0 {
		return fmt.Errorf("nats.publish_timeout must be positive, got %s", c.NATS.PublishTimeout)
	}
	if c.NATS.BreakerMaxFailures == 0 || c.NATS.BreakerTimeout <= 0 {
		return fmt.Errorf("nats.breaker_max_failures and nats.breaker_timeout must be positive")
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/', got %q", c.Metrics.Path)
	}
	return nil
}
