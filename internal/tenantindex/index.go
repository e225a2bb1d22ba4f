// Package tenantindex maintains the in-memory tenant -> profile mapping the
// router consults on every publication. The current mapping is an immutable
// snapshot, replaced wholesale by a background refresher on a fixed
// interval; readers never observe a partially updated map.
package tenantindex

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/ndrandal/odds-router/internal/oddsmodel"
)

// TenantStore is the external collaborator this index refreshes from.
type TenantStore interface {
	FindAllTenants(ctx context.Context) ([]oddsmodel.Tenant, error)
}

// snapshot is the immutable view swapped in atomically on each refresh.
type snapshot struct {
	byTenant map[string]string // tenantId -> profileId
}

// Index answers tenantId -> profileId and the reverse grouping, backed by a
// snapshot refreshed on a schedule from TenantStore. The zero value is not
// usable; construct with New.
type Index struct {
	current atomic.Pointer[snapshot]
	store   TenantStore
}

// New creates an Index with an empty snapshot in effect until the first
// successful refresh.
func New(store TenantStore) *Index {
	idx := &Index{store: store}
	idx.current.Store(&snapshot{byTenant: map[string]string{}})
	return idx
}

// Get returns the profile id a tenant currently maps to, and whether the
// tenant is present (with a non-null profile) in the current snapshot.
func (idx *Index) Get(tenantID string) (profileID string, ok bool) {
	snap := idx.current.Load()
	profileID, ok = snap.byTenant[tenantID]
	return profileID, ok
}

// Tenants returns every tenant id in the current snapshot. The returned
// slice is owned by the caller.
func (idx *Index) Tenants() []string {
	snap := idx.current.Load()
	out := make([]string, 0, len(snap.byTenant))
	for t := range snap.byTenant {
		out = append(out, t)
	}
	return out
}

// TenantsByProfile returns every tenant id currently mapped to profileID.
func (idx *Index) TenantsByProfile(profileID string) []string {
	snap := idx.current.Load()
	var out []string
	for t, p := range snap.byTenant {
		if p == profileID {
			out = append(out, t)
		}
	}
	return out
}

// GroupByProfile returns the full grouping of the current snapshot's
// tenants by profile id, computed from a single snapshot reference so the
// result is internally consistent even if a refresh swaps concurrently.
func (idx *Index) GroupByProfile() map[string][]string {
	snap := idx.current.Load()
	out := make(map[string][]string)
	for t, p := range snap.byTenant {
		out[p] = append(out[p], t)
	}
	return out
}

// Refresh queries the tenant store once and, on success, atomically
// replaces the current snapshot. Tenants with no profile are excluded —
// only routable tenants are indexed. On failure the previous snapshot
// remains in effect; the caller is expected to log the error.
func (idx *Index) Refresh(ctx context.Context) error {
	tenants, err := idx.store.FindAllTenants(ctx)
	if err != nil {
		return err
	}

	byTenant := make(map[string]string, len(tenants))
	for _, t := range tenants {
		if !t.Routable() {
			continue
		}
		byTenant[t.ID] = t.ProfileID
	}

	idx.current.Store(&snapshot{byTenant: byTenant})
	return nil
}

// RunRefresher runs Refresh once immediately, then on every tick of
// interval, until ctx is cancelled. Refresh failures are logged; the
// previous snapshot is never cleared.
func RunRefresher(ctx context.Context, idx *Index, interval time.Duration) {
	if err := idx.Refresh(ctx); err != nil {
		log.Printf("tenantindex: initial refresh failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := idx.Refresh(ctx); err != nil {
				log.Printf("tenantindex: refresh failed, keeping previous snapshot: %v", err)
			}
		}
	}
}
