// Lynx - Tracking Pixel Analytics with Live Event Streaming
// Copyright 2026 Adriano Melo (adrianomelo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/adrianomelo/lynx

package websocket

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/adrianomelo/lynx/internal/logging"
	"github.com/adrianomelo/lynx/internal/models"
)

//nolint:gochecknoinits // keep test output quiet
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// fakeSubscriber records every message it accepts.
type fakeSubscriber struct {
	mu       sync.Mutex
	messages [][]byte
	reject   bool
	closed   int
}

func (f *fakeSubscriber) Send(msg []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject || f.closed > 0 {
		return false
	}
	f.messages = append(f.messages, msg)
	return true
}

func (f *fakeSubscriber) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
}

func (f *fakeSubscriber) received() []models.EventPayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.EventPayload, 0, len(f.messages))
	for _, m := range f.messages {
		var p models.EventPayload
		if err := json.Unmarshal(m, &p); err != nil {
			panic(err)
		}
		out = append(out, p)
	}
	return out
}

func (f *fakeSubscriber) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func testPayload(id uuid.UUID) models.EventPayload {
	return models.EventPayload{
		ID:        id.String(),
		Country:   "US",
		Referer:   models.Unknown,
		UserAgent: models.UserAgent{models.UAName: "Chrome", models.UAOS: "Linux"},
	}
}

func payloadEqual(a, b models.EventPayload) bool {
	if a.ID != b.ID || a.Country != b.Country || a.Referer != b.Referer || len(a.UserAgent) != len(b.UserAgent) {
		return false
	}
	for k, v := range a.UserAgent {
		if b.UserAgent[k] != v {
			return false
		}
	}
	return true
}

func TestRegistry_SubscribePublish(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()
	sub := &fakeSubscriber{}

	r.Subscribe(id, sub)
	event := testPayload(id)
	if n := r.Publish(id, event); n != 1 {
		t.Errorf("Publish() delivered = %d, want 1", n)
	}

	got := sub.received()
	if len(got) != 1 {
		t.Fatalf("received %d messages, want exactly 1", len(got))
	}
	if !payloadEqual(got[0], event) {
		t.Errorf("received %+v, want %+v", got[0], event)
	}
}

func TestRegistry_SubscribeIdempotent(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()
	sub := &fakeSubscriber{}

	r.Subscribe(id, sub)
	r.Subscribe(id, sub)

	if n := r.SubscriberCount(id); n != 1 {
		t.Errorf("SubscriberCount() = %d, want 1", n)
	}
	r.Publish(id, testPayload(id))
	if got := len(sub.received()); got != 1 {
		t.Errorf("received %d messages, want 1", got)
	}
}

func TestRegistry_UnsubscribeThenPublish(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()
	sub := &fakeSubscriber{}

	r.Subscribe(id, sub)
	r.Unsubscribe(id, sub)

	if n := r.Publish(id, testPayload(id)); n != 0 {
		t.Errorf("Publish() delivered = %d, want 0", n)
	}
	if got := len(sub.received()); got != 0 {
		t.Errorf("received %d messages after unsubscribe, want 0", got)
	}
}

func TestRegistry_UnsubscribeUnknown(t *testing.T) {
	r := NewRegistry()
	// Neither call may panic or error.
	r.Unsubscribe(uuid.New(), &fakeSubscriber{})

	id := uuid.New()
	r.Subscribe(id, &fakeSubscriber{})
	r.Unsubscribe(id, &fakeSubscriber{})
	if n := r.SubscriberCount(id); n != 1 {
		t.Errorf("SubscriberCount() = %d, want 1", n)
	}
}

func TestRegistry_PublishIsolatedByIdentifier(t *testing.T) {
	r := NewRegistry()
	a, b := uuid.New(), uuid.New()
	subA, subB := &fakeSubscriber{}, &fakeSubscriber{}
	r.Subscribe(a, subA)
	r.Subscribe(b, subB)

	r.Publish(a, testPayload(a))

	if len(subA.received()) != 1 {
		t.Error("subscriber of a should receive the event")
	}
	if len(subB.received()) != 0 {
		t.Error("subscriber of b should not receive events for a")
	}
}

func TestRegistry_PublishWithoutSubscribers(t *testing.T) {
	r := NewRegistry()
	if n := r.Publish(uuid.New(), models.EventPayload{}); n != 0 {
		t.Errorf("Publish() = %d, want 0", n)
	}
}

func TestRegistry_EmptySetRemoved(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()
	s1, s2 := &fakeSubscriber{}, &fakeSubscriber{}

	r.Subscribe(id, s1)
	r.Subscribe(id, s2)
	if ids, subs := r.Counts(); ids != 1 || subs != 2 {
		t.Fatalf("Counts() = (%d, %d), want (1, 2)", ids, subs)
	}

	r.Unsubscribe(id, s1)
	r.Unsubscribe(id, s2)
	if ids, subs := r.Counts(); ids != 0 || subs != 0 {
		t.Errorf("Counts() = (%d, %d), want (0, 0) once the last subscriber leaves", ids, subs)
	}
}

func TestRegistry_HandleInOneSet(t *testing.T) {
	r := NewRegistry()
	a, b := uuid.New(), uuid.New()
	sub := &fakeSubscriber{}

	r.Subscribe(a, sub)
	r.Subscribe(b, sub)

	if r.SubscriberCount(a) != 0 {
		t.Error("handle should have left a's set")
	}
	if r.SubscriberCount(b) != 1 {
		t.Error("handle should be in b's set")
	}
	r.Publish(a, testPayload(a))
	if len(sub.received()) != 0 {
		t.Error("handle moved to b must not receive a's events")
	}
}

func TestRegistry_FailingSubscriberDropped(t *testing.T) {
	r := NewRegistry()
	id := uuid.New()
	good1, bad, good2 := &fakeSubscriber{}, &fakeSubscriber{reject: true}, &fakeSubscriber{}

	r.Subscribe(id, good1)
	r.Subscribe(id, bad)
	r.Subscribe(id, good2)

	if n := r.Publish(id, testPayload(id)); n != 2 {
		t.Errorf("Publish() delivered = %d, want 2", n)
	}
	if len(good1.received()) != 1 || len(good2.received()) != 1 {
		t.Error("healthy subscribers should receive the event")
	}
	if bad.closeCount() != 1 {
		t.Errorf("failing subscriber closed %d times, want 1", bad.closeCount())
	}
	if n := r.SubscriberCount(id); n != 2 {
		t.Errorf("SubscriberCount() = %d, want 2 after drop", n)
	}
}

func TestRegistry_ConcurrentSubscribersReceiveOnce(t *testing.T) {
	const n = 100
	r := NewRegistry()
	id := uuid.New()

	subs := make([]*fakeSubscriber, n)
	var wg sync.WaitGroup
	for i := range subs {
		subs[i] = &fakeSubscriber{}
		wg.Add(1)
		go func(s *fakeSubscriber) {
			defer wg.Done()
			r.Subscribe(id, s)
		}(subs[i])
	}
	wg.Wait()

	event := testPayload(id)
	if delivered := r.Publish(id, event); delivered != n {
		t.Errorf("Publish() delivered = %d, want %d", delivered, n)
	}

	for i, s := range subs {
		got := s.received()
		if len(got) != 1 {
			t.Errorf("subscriber %d received %d messages, want 1", i, len(got))
			continue
		}
		if !payloadEqual(got[0], event) {
			t.Errorf("subscriber %d received %+v", i, got[0])
		}
	}
}

func TestRegistry_ConcurrentMixedOperations(t *testing.T) {
	r := NewRegistry()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(3)
		id := ids[i%len(ids)]
		sub := &fakeSubscriber{}
		go func() {
			defer wg.Done()
			r.Subscribe(id, sub)
		}()
		go func() {
			defer wg.Done()
			r.Publish(id, testPayload(id))
		}()
		go func() {
			defer wg.Done()
			r.Unsubscribe(id, sub)
		}()
	}
	wg.Wait()

	// Whatever the interleaving, counts must stay consistent.
	idCount, subCount := r.Counts()
	total := 0
	for _, id := range ids {
		total += r.SubscriberCount(id)
	}
	if total != subCount {
		t.Errorf("sum of set sizes = %d, Counts() subscribers = %d", total, subCount)
	}
	if idCount > len(ids) {
		t.Errorf("identifiers = %d, want <= %d", idCount, len(ids))
	}
}

func TestRegistry_RunWithContext(t *testing.T) {
	r := NewRegistry()
	subs := []*fakeSubscriber{{}, {}, {}}
	for _, s := range subs {
		r.Subscribe(uuid.New(), s)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.RunWithContext(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunWithContext() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RunWithContext did not return after cancel")
	}

	for i, s := range subs {
		if s.closeCount() != 1 {
			t.Errorf("subscriber %d closed %d times, want 1", i, s.closeCount())
		}
	}
	if ids, n := r.Counts(); ids != 0 || n != 0 {
		t.Errorf("Counts() after shutdown = (%d, %d), want (0, 0)", ids, n)
	}
}

func TestShutdownReason(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := shutdownReason(ctx); got != ShutdownReasonContextCanceled {
		t.Errorf("shutdownReason(canceled) = %q", got)
	}

	ctx, cancel = context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()
	if got := shutdownReason(ctx); got != ShutdownReasonContextDeadline {
		t.Errorf("shutdownReason(deadline) = %q", got)
	}
}

func BenchmarkRegistry_Publish(b *testing.B) {
	r := NewRegistry()
	id := uuid.New()
	for i := 0; i < 10; i++ {
		r.Subscribe(id, &discardSubscriber{id: i})
	}
	payload := testPayload(id)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Publish(id, payload)
	}
}

type discardSubscriber struct{ id int }

func (*discardSubscriber) Send([]byte) bool { return true }
func (*discardSubscriber) Close()           {}
