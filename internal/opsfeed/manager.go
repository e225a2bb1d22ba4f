package opsfeed

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ndrandal/odds-router/internal/router"
)

// Manager fans out router.Events to every connected operational-feed
// client. It implements router.Telemetry.
type Manager struct {
	mu         sync.RWMutex
	clients    map[uint64]*Client
	bufferSize int
}

// NewManager creates an operational-feed manager with the given
// per-client send-buffer size.
func NewManager(bufferSize int) *Manager {
	return &Manager{clients: make(map[uint64]*Client), bufferSize: bufferSize}
}

// Register adds a new client.
func (m *Manager) Register(conn *websocket.Conn) *Client {
	c := NewClient(conn, m.bufferSize)
	m.mu.Lock()
	m.clients[c.ID] = c
	m.mu.Unlock()
	log.Printf("opsfeed: client %d connected (%s)", c.ID, conn.RemoteAddr())
	return c
}

// Unregister removes a client.
func (m *Manager) Unregister(c *Client) {
	m.mu.Lock()
	delete(m.clients, c.ID)
	m.mu.Unlock()
	c.Close()
	log.Printf("opsfeed: client %d disconnected", c.ID)
}

// wireEvent is the JSON shape pushed to operational-feed clients.
type wireEvent struct {
	Route       string `json:"route"`
	TenantCount int    `json:"tenantCount"`
	Boosted     bool   `json:"boosted"`
	Dropped     bool   `json:"dropped"`
}

// Emit implements router.Telemetry: it encodes ev once and fans it out to
// every connected client, dropping it for any client whose send buffer is
// full rather than blocking the publisher.
func (m *Manager) Emit(ev router.Event) {
	data, err := json.Marshal(wireEvent{
		Route:       ev.Route.String(),
		TenantCount: ev.TenantCount,
		Boosted:     ev.Boosted,
		Dropped:     ev.Dropped,
	})
	if err != nil {
		log.Printf("opsfeed: marshal event: %v", err)
		return
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.clients {
		c.Send(data)
	}
}

// ClientCount returns the number of connected operational-feed clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}
