// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

/*
Package websocket delivers tracking events to live subscribers.

Key Components:

  - Registry: maps a tracking identifier to the set of connected subscribers.
    Subscribe, Unsubscribe and Publish are safe for concurrent use.
  - Client: one gorilla/websocket connection subscribed to one identifier,
    with a buffered send queue drained by writePump.
  - Handler: performs the HTTP upgrade and starts a Client.

Fan-out:

	pixel request ──► Registry.Publish(id, payload)
	                     │ snapshot under RLock, then unlock
	                     ├──► client A.Send  (non-blocking)
	                     ├──► client B.Send  (non-blocking)
	                     └──► client C.Send  buffer full ──► Unsubscribe + Close

The payload is encoded once per Publish and the same bytes are queued to
every subscriber. A subscriber whose queue is full is dropped rather than
slowing down the request that published the event.

Connection lifecycle:

Each Client runs the table in state.go:

	Unconnected --connect--> Connected   (Subscribe)
	Connected   --message--> Connected   (inbound messages are discarded)
	Connected   --close----> Closed      (Unsubscribe)
	Connected   --error----> Closed      (Unsubscribe)

Closed is absorbing, so the read and write pumps can both report a failure
without unsubscribing twice.

Keepalive:

writePump sends a ping every PingPeriod; readPump extends the read deadline
by PongWait on each pong. Inbound frames larger than MaxMessageSize close the
connection.

Empty identifier sets are removed as soon as their last subscriber leaves,
so the registry only holds identifiers that currently have a viewer.
*/
package websocket
