// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package services

import (
	"context"
)

// ContextRunner is satisfied by *websocket.Registry. Declared here so this
// package does not import websocket.
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// SubscriptionRegistryService supervises the subscription registry. When the
// tree stops, the registry closes every live subscriber.
type SubscriptionRegistryService struct {
	registry ContextRunner
	name     string
}

// NewSubscriptionRegistryService wraps registry.
func NewSubscriptionRegistryService(registry ContextRunner) *SubscriptionRegistryService {
	return &SubscriptionRegistryService{
		registry: registry,
		name:     "subscription-registry",
	}
}

// Serve implements suture.Service.
func (s *SubscriptionRegistryService) Serve(ctx context.Context) error {
	return s.registry.RunWithContext(ctx)
}

// String names the service in supervisor logs.
func (s *SubscriptionRegistryService) String() string {
	return s.name
}
