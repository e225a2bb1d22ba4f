// Package opsfeed is a read-only WebSocket tap of routing decisions: which
// route kind a publish took, how many tenants it reached, whether a boost
// applied. It exposes no CRUD or control surface — operators watch it,
// they cannot act through it. Adapted from internal/session's
// client/manager/handler trio, repurposed from "push market ticks to
// trading clients" to "push routing telemetry to operators."
package opsfeed

import (
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// Client is a connected operational-feed subscriber.
type Client struct {
	ID   uint64
	Conn *websocket.Conn

	sendCh    chan []byte
	done      chan struct{}
	closeOnce sync.Once

	Dropped uint64
}

var clientIDCounter uint64

// NewClient wraps a WebSocket connection with a buffered send channel.
func NewClient(conn *websocket.Conn, bufferSize int) *Client {
	return &Client{
		ID:     atomic.AddUint64(&clientIDCounter, 1),
		Conn:   conn,
		sendCh: make(chan []byte, bufferSize),
		done:   make(chan struct{}),
	}
}

// Send enqueues data for delivery. Returns false if the client's buffer is
// full, in which case the event is dropped rather than blocking the
// publisher that's emitting telemetry.
func (c *Client) Send(data []byte) bool {
	select {
	case c.sendCh <- data:
		return true
	default:
		atomic.AddUint64(&c.Dropped, 1)
		return false
	}
}

// SendCh returns the send channel for the write pump.
func (c *Client) SendCh() <-chan []byte {
	return c.sendCh
}

// Done returns a channel closed when the client disconnects.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close terminates the client connection.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.Conn.Close()
	})
}
