package opsfeed

import (
	"testing"

	"github.com/ndrandal/odds-router/internal/router"
)

func TestEmitDropsOnFullBuffer(t *testing.T) {
	m := NewManager(1)
	c := &Client{ID: 1, sendCh: make(chan []byte, 1), done: make(chan struct{})}
	m.mu.Lock()
	m.clients[c.ID] = c
	m.mu.Unlock()

	m.Emit(router.Event{Route: router.RouteBroadcast, TenantCount: 3})
	m.Emit(router.Event{Route: router.RouteBroadcast, TenantCount: 3})

	if c.Dropped != 1 {
		t.Fatalf("Dropped = %d, want 1 (buffer size 1, two emits)", c.Dropped)
	}

	select {
	case data := <-c.sendCh:
		if len(data) == 0 {
			t.Fatal("expected non-empty encoded event")
		}
	default:
		t.Fatal("expected one buffered event")
	}
}

func TestClientCount(t *testing.T) {
	m := NewManager(4)
	if m.ClientCount() != 0 {
		t.Fatalf("ClientCount() = %d, want 0", m.ClientCount())
	}

	c := &Client{ID: 1, sendCh: make(chan []byte, 4), done: make(chan struct{})}
	m.mu.Lock()
	m.clients[c.ID] = c
	m.mu.Unlock()

	if m.ClientCount() != 1 {
		t.Fatalf("ClientCount() = %d, want 1", m.ClientCount())
	}
}
