// Package broker defines the downstream publish contract the router calls
// once per (message, tenant) pair, plus a Kafka-backed implementation and
// an in-memory recording fake for tests.
package broker

import (
	"context"

	"github.com/ndrandal/odds-router/internal/oddsmodel"
)

// Adapter is the single contract the router depends on. Implementations
// must be safe to call concurrently; the core treats a returned error as
// fatal to that one tenant's publication only, per spec §4.7/§7.
type Adapter interface {
	Publish(ctx context.Context, message oddsmodel.Message, sportID int64, nodeID, tenantID string, headers map[string]string) error
}
