package ws

import (
	"errors"
	"testing"
	"time"
)

type chanSubscriber struct {
	received chan []byte
	fail     bool
	closed   chan struct{}
}

func newChanSubscriber(fail bool) *chanSubscriber {
	return &chanSubscriber{
		received: make(chan []byte, 10),
		fail:     fail,
		closed:   make(chan struct{}, 1),
	}
}

func (s *chanSubscriber) Send(payload []byte) error {
	if s.fail {
		return errors.New("send failed")
	}
	s.received <- payload
	return nil
}

func (s *chanSubscriber) Close() {
	select {
	case s.closed <- struct{}{}:
	default:
	}
}

func waitFor(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case payload := <-ch:
		return payload
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for payload")
		return nil
	}
}

func TestHubBroadcastsToAllSubscribers(t *testing.T) {
	hub := NewHub(10)
	a := newChanSubscriber(false)
	b := newChanSubscriber(false)
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast([]byte(`{"type":"user.created"}`))

	if got := string(waitFor(t, a.received)); got != `{"type":"user.created"}` {
		t.Fatalf("unexpected payload for a: %q", got)
	}
	if got := string(waitFor(t, b.received)); got != `{"type":"user.created"}` {
		t.Fatalf("unexpected payload for b: %q", got)
	}
}

func TestHubDropsFailingSubscriber(t *testing.T) {
	hub := NewHub(10)
	bad := newChanSubscriber(true)
	good := newChanSubscriber(false)
	hub.Register(bad)
	hub.Register(good)

	hub.Broadcast([]byte("one"))
	waitFor(t, good.received)

	select {
	case <-bad.closed:
	case <-time.After(time.Second):
		t.Fatal("failing subscriber must be closed")
	}

	hub.Broadcast([]byte("two"))
	if got := string(waitFor(t, good.received)); got != "two" {
		t.Fatalf("good subscriber must keep receiving, got %q", got)
	}
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub(10)
	sub := newChanSubscriber(false)
	hub.Register(sub)
	hub.Unregister(sub)

	hub.Broadcast([]byte("after"))

	select {
	case payload := <-sub.received:
		t.Fatalf("unregistered subscriber received %q", payload)
	case <-time.After(100 * time.Millisecond):
	}
}
