// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

/*
Package supervisor runs the long-lived parts of Lynx under a suture v4 tree.

	lynx
	├── messaging-layer
	│   └── SubscriptionRegistryService
	└── api-layer
	    └── HTTPServerService

Crashed services are restarted with suture's failure threshold and backoff.
Cancelling the context passed to Serve stops every service; the registry
closes all live subscribers and the HTTP server drains in-flight requests
within the configured shutdown timeout.

Supervisor events (start, stop, failure, backoff) are logged through
sutureslog, fed by logging.NewSlogLogger so they share the zerolog stream:

	tree, _ := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(services.NewSubscriptionRegistryService(registry))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	err := tree.Serve(ctx)
*/
package supervisor
