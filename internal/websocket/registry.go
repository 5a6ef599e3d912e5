// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package websocket

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adrianomelo/lynx/internal/logging"
	"github.com/adrianomelo/lynx/internal/metrics"
	"github.com/adrianomelo/lynx/internal/models"
)

// ShutdownReason identifies why the registry is shutting down.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Subscriber is a live connection handle. The registry never inspects it
// beyond these two calls.
type Subscriber interface {
	// Send queues msg without blocking. It returns false when the message
	// could not be queued (buffer full or subscriber closed).
	Send(msg []byte) bool
	// Close releases the subscriber. It must be safe to call more than once.
	Close()
}

// Publisher is the part of the registry the pixel handler needs.
type Publisher interface {
	Publish(id uuid.UUID, payload models.EventPayload) int
}

// Registry maps tracking identifiers to their live subscribers.
//
// Subscribe, Unsubscribe and Publish are safe for concurrent use. Publish
// sends to a snapshot taken under the read lock and never holds the lock
// while talking to a subscriber.
type Registry struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[Subscriber]struct{}
	// owner enforces that a handle is in at most one identifier's set.
	owner map[Subscriber]uuid.UUID

	log zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		subscribers: make(map[uuid.UUID]map[Subscriber]struct{}),
		owner:       make(map[Subscriber]uuid.UUID),
		log:         logging.WithComponent("subscription-registry"),
	}
}

// Subscribe adds s to the set for id, creating the set on first use.
// Subscribing the same pair twice is a no-op. A handle already subscribed to
// another identifier is moved.
func (r *Registry) Subscribe(id uuid.UUID, s Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.owner[s]; ok {
		if prev == id {
			return
		}
		r.removeLocked(prev, s)
	}

	set, ok := r.subscribers[id]
	if !ok {
		set = make(map[Subscriber]struct{})
		r.subscribers[id] = set
	}
	set[s] = struct{}{}
	r.owner[s] = id

	r.updateGaugesLocked()
	r.log.Debug().Str("id", id.String()).Int("subscribers", len(set)).Msg("subscriber added")
}

// Unsubscribe removes s from the set for id. Unknown pairs are ignored.
func (r *Registry) Unsubscribe(id uuid.UUID, s Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.removeLocked(id, s) {
		return
	}

	r.updateGaugesLocked()
	r.log.Debug().Str("id", id.String()).Msg("subscriber removed")
}

// removeLocked deletes s from id's set and drops the set once it is empty.
// Callers must hold mu.
func (r *Registry) removeLocked(id uuid.UUID, s Subscriber) bool {
	set, ok := r.subscribers[id]
	if !ok {
		return false
	}
	if _, ok := set[s]; !ok {
		return false
	}

	delete(set, s)
	delete(r.owner, s)
	if len(set) == 0 {
		delete(r.subscribers, id)
	}
	return true
}

// Publish sends payload to every subscriber of id and returns how many
// accepted it. A subscriber that cannot accept the message is unsubscribed
// and closed; the others are unaffected. Publish never blocks on a
// subscriber and never fails.
func (r *Registry) Publish(id uuid.UUID, payload models.EventPayload) int {
	snapshot := r.snapshot(id)
	if len(snapshot) == 0 {
		return 0
	}

	data, err := json.Marshal(payload)
	if err != nil {
		r.log.Error().Err(err).Str("id", id.String()).Msg("failed to encode event payload")
		return 0
	}

	delivered := 0
	var failed []Subscriber
	for _, s := range snapshot {
		if s.Send(data) {
			delivered++
			metrics.RecordFanoutDelivery()
			continue
		}
		failed = append(failed, s)
	}

	for _, s := range failed {
		r.Unsubscribe(id, s)
		reason := dropReason(s)
		s.Close()
		metrics.RecordFanoutDrop(reason)
		r.log.Warn().Str("id", id.String()).Str("reason", reason).Msg("dropping subscriber")
	}

	return delivered
}

// dropReason distinguishes a subscriber that already went away from one
// whose buffer is full.
func dropReason(s Subscriber) string {
	if c, ok := s.(interface{ Closed() bool }); ok && c.Closed() {
		return metrics.DropClosed
	}
	return metrics.DropBufferFull
}

func (r *Registry) snapshot(id uuid.UUID) []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.subscribers[id]
	if len(set) == 0 {
		return nil
	}
	out := make([]Subscriber, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}

// SubscriberCount returns the number of subscribers for id.
func (r *Registry) SubscriberCount(id uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscribers[id])
}

// Counts returns the number of identifiers with subscribers and the total
// number of subscribers.
func (r *Registry) Counts() (identifiers, subscribers int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscribers), len(r.owner)
}

func (r *Registry) updateGaugesLocked() {
	metrics.SetRegistrySize(len(r.subscribers), len(r.owner))
}

// RunWithContext blocks until ctx is done, then closes every subscriber.
// It is the registry's lifecycle under the supervisor tree.
func (r *Registry) RunWithContext(ctx context.Context) error {
	<-ctx.Done()

	closed := r.closeAll()
	r.log.Info().
		Str("reason", string(shutdownReason(ctx))).
		Int("subscribers_closed", closed).
		Msg("subscription registry stopped")

	return ctx.Err()
}

// closeAll empties the registry and closes every subscriber outside the lock.
func (r *Registry) closeAll() int {
	r.mu.Lock()
	all := make([]Subscriber, 0, len(r.owner))
	for s := range r.owner {
		all = append(all, s)
	}
	r.subscribers = make(map[uuid.UUID]map[Subscriber]struct{})
	r.owner = make(map[Subscriber]uuid.UUID)
	r.updateGaugesLocked()
	r.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
	return len(all)
}

func shutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}
