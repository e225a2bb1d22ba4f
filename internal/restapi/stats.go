package restapi

import (
	"sync/atomic"

	"github.com/ndrandal/odds-router/internal/router"
)

// Stats accumulates aggregate publish counters from router.Events. It
// implements router.Telemetry so it can be combined with the operational
// feed via router.Tee.
type Stats struct {
	publishCount  atomic.Int64
	tenantCalls   atomic.Int64
	boostedCount  atomic.Int64
	droppedCount  atomic.Int64
	singleTenant  atomic.Int64
	profileRoutes atomic.Int64
	broadcasts    atomic.Int64
}

// NewStats creates a zeroed Stats counter set.
func NewStats() *Stats {
	return &Stats{}
}

// Emit implements router.Telemetry.
func (s *Stats) Emit(ev router.Event) {
	s.publishCount.Add(1)
	s.tenantCalls.Add(int64(ev.TenantCount))
	if ev.Boosted {
		s.boostedCount.Add(1)
	}
	if ev.Dropped {
		s.droppedCount.Add(1)
	}
	switch ev.Route {
	case router.RouteSingleTenant:
		s.singleTenant.Add(1)
	case router.RouteProfile:
		s.profileRoutes.Add(1)
	case router.RouteBroadcast:
		s.broadcasts.Add(1)
	}
}

// snapshot is the JSON-serializable view of the current counters.
type snapshot struct {
	PublishCount  int64 `json:"publishCount"`
	TenantCalls   int64 `json:"tenantCalls"`
	BoostedCount  int64 `json:"boostedCount"`
	DroppedCount  int64 `json:"droppedCount"`
	SingleTenant  int64 `json:"singleTenantRoutes"`
	ProfileRoutes int64 `json:"profileRoutes"`
	Broadcasts    int64 `json:"broadcastRoutes"`
}

func (s *Stats) snapshot() snapshot {
	return snapshot{
		PublishCount:  s.publishCount.Load(),
		TenantCalls:   s.tenantCalls.Load(),
		BoostedCount:  s.boostedCount.Load(),
		DroppedCount:  s.droppedCount.Load(),
		SingleTenant:  s.singleTenant.Load(),
		ProfileRoutes: s.profileRoutes.Load(),
		Broadcasts:    s.broadcasts.Load(),
	}
}
