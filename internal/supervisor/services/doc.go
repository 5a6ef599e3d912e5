// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

// Package services adapts Lynx components to suture.Service.
//
// HTTPServerService turns ListenAndServe/Shutdown into a context-aware Serve.
// SubscriptionRegistryService delegates to the registry's RunWithContext.
// Both implement fmt.Stringer so suture logs them by name.
package services
