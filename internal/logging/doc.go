// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

// Package logging provides the zerolog-based structured logger used across Lynx.
//
// A single global logger is configured once from main:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("addr", addr).Msg("http server listening")
//
// Request-scoped logging picks up the request and correlation ids that the
// HTTP middleware stores in the context:
//
//	logging.Ctx(r.Context()).Warn().Err(err).Msg("store write failed")
//
// # Configuration
//
// The level and format come from the logging section of the config
// (LOG_LEVEL, LOG_FORMAT, LOG_CALLER environment variables).
//
// # slog
//
// SlogHandler adapts zerolog to log/slog for libraries that only accept a
// *slog.Logger, such as sutureslog in the supervisor tree.
//
// Always terminate an event chain with Msg or Send; an unterminated chain is
// never written.
package logging
