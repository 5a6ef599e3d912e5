// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

// Package validation wraps go-playground/validator v10 behind a process-wide
// singleton.
//
// Field names in errors follow koanf tags, so a failure on the Timestream
// region is reported as "timestream.region". One custom tag is registered:
// awsregion, an AWS region name such as eu-west-1.
//
// Example:
//
//	type TimestreamConfig struct {
//	    Region string `koanf:"region" validate:"required,awsregion"`
//	}
//
//	if err := validation.ValidateStruct(&cfg); err != nil {
//	    return fmt.Errorf("invalid configuration: %w", err)
//	}
package validation
