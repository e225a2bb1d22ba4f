package broker

import (
	"context"
	"sync"

	"github.com/ndrandal/odds-router/internal/oddsmodel"
)

// PublishCall records a single Publish invocation, for test assertions.
type PublishCall struct {
	Message  oddsmodel.Message
	SportID  int64
	NodeID   string
	TenantID string
	Headers  map[string]string
}

// Memory is an in-memory recording Adapter fake. Safe for concurrent use,
// matching the concurrency contract real adapters must satisfy.
type Memory struct {
	mu      sync.Mutex
	calls   []PublishCall
	failFor map[string]error // tenantID -> error to return instead of recording
}

// NewMemory creates an empty Memory fake.
func NewMemory() *Memory {
	return &Memory{failFor: make(map[string]error)}
}

// FailFor makes subsequent Publish calls targeting tenantID return err
// instead of succeeding, to exercise per-tenant BrokerFailure isolation.
func (m *Memory) FailFor(tenantID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFor[tenantID] = err
}

// Publish records the call, or returns the configured failure for tenantID.
func (m *Memory) Publish(_ context.Context, message oddsmodel.Message, sportID int64, nodeID, tenantID string, headers map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.failFor[tenantID]; ok {
		return err
	}

	m.calls = append(m.calls, PublishCall{
		Message: message, SportID: sportID, NodeID: nodeID, TenantID: tenantID, Headers: headers,
	})
	return nil
}

// Calls returns a copy of every recorded call, in call order.
func (m *Memory) Calls() []PublishCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PublishCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsForTenant returns recorded calls targeting tenantID, in call order.
func (m *Memory) CallsForTenant(tenantID string) []PublishCall {
	var out []PublishCall
	for _, c := range m.Calls() {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out
}
