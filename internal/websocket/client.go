// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/adrianomelo/lynx/internal/logging"
)

// ClientConfig holds per-connection limits and keepalive timings.
type ClientConfig struct {
	SendBufferSize int
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
}

// DefaultClientConfig returns the standard keepalive settings.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		SendBufferSize: 256,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
		MaxMessageSize: 512 * 1024,
	}
}

// clientIDCounter numbers connections for logs.
var clientIDCounter atomic.Uint64

// Client is one websocket subscriber of a tracking identifier. It implements
// Subscriber: the registry queues messages on send and writePump drains it.
type Client struct {
	id         uint64
	trackingID uuid.UUID
	conn       *websocket.Conn
	registry   *Registry
	cfg        ClientConfig
	send       chan []byte

	// done is closed by Close. send is never closed, so a Publish racing with
	// shutdown cannot panic.
	done      chan struct{}
	closeOnce sync.Once

	mu    sync.Mutex
	state ConnState

	log zerolog.Logger
}

// NewClient creates an unconnected client for trackingID.
func NewClient(registry *Registry, conn *websocket.Conn, trackingID uuid.UUID, cfg ClientConfig) *Client {
	id := clientIDCounter.Add(1)
	return &Client{
		id:         id,
		trackingID: trackingID,
		conn:       conn,
		registry:   registry,
		cfg:        cfg,
		send:       make(chan []byte, cfg.SendBufferSize),
		done:       make(chan struct{}),
		state:      StateUnconnected,
		log: logging.With().
			Str("component", "websocket-client").
			Uint64("client_id", id).
			Str("id", trackingID.String()).
			Logger(),
	}
}

// ID returns the connection number.
func (c *Client) ID() uint64 {
	return c.id
}

// State returns the current lifecycle state.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Send queues msg for writePump without blocking.
func (c *Client) Send(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Close signals writePump to send a close frame and release the connection.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Closed reports whether Close has been called.
func (c *Client) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// handle feeds a transport event through the state table and applies the
// resulting registry action outside the client lock.
func (c *Client) handle(event ConnEvent) {
	c.mu.Lock()
	prev := c.state
	next, action, err := Transition(prev, event)
	c.state = next
	c.mu.Unlock()

	if err != nil {
		c.log.Warn().Err(err).Msg("ignoring connection event")
		return
	}

	switch action {
	case ActionSubscribe:
		c.registry.Subscribe(c.trackingID, c)
		c.log.Info().Msg("websocket subscriber connected")
	case ActionUnsubscribe:
		c.registry.Unsubscribe(c.trackingID, c)
		c.Close()
		c.log.Info().Str("event", event.String()).Msg("websocket subscriber disconnected")
	case ActionNone:
	}
}

// readPump discards inbound messages and turns read failures into
// close/error events. It owns the read deadline and pong handling.
func (c *Client) readPump() {
	defer func() {
		_ = c.conn.Close() // best-effort; writePump may already have closed it
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait)); err != nil {
		c.log.Error().Err(err).Msg("failed to set read deadline")
		c.handle(EventError)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.handle(EventClose)
				return
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("unexpected websocket close error")
			}
			c.handle(EventError)
			return
		}
		c.handle(EventMessage)
	}
}

// writePump writes queued events and keepalive pings. It exits when the
// client is closed or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // best-effort cleanup
	}()

	for {
		select {
		case message := <-c.send:
			if err := c.write(websocket.TextMessage, message); err != nil {
				c.log.Debug().Err(err).Msg("failed to write event")
				c.handle(EventError)
				return
			}

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.handle(EventError)
				return
			}

		case <-c.done:
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

// Start subscribes the client and launches its pumps.
func (c *Client) Start() {
	c.handle(EventConnect)
	go c.writePump()
	go c.readPump()
}
