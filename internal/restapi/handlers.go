package restapi

import (
	"net/http"
	"sort"
	"time"
)

type tenantInfo struct {
	ID        string `json:"id"`
	ProfileID string `json:"profileId"`
}

// handleTenants lists every tenant currently present in the index,
// sorted by id for a stable response.
func (s *Server) handleTenants(w http.ResponseWriter, r *http.Request) {
	ids := s.index.Tenants()
	sort.Strings(ids)

	out := make([]tenantInfo, 0, len(ids))
	for _, id := range ids {
		profileID, _ := s.index.Get(id)
		out = append(out, tenantInfo{ID: id, ProfileID: profileID})
	}

	writeJSON(w, http.StatusOK, out)
}

// handleTenantDetail returns a single tenant's current profile mapping.
func (s *Server) handleTenantDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	profileID, ok := s.index.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "tenant not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, tenantInfo{ID: id, ProfileID: profileID})
}

type statsResponse struct {
	Uptime        string `json:"uptime"`
	OpsFeedCount  int    `json:"opsFeedClients"`
	TenantCount   int    `json:"tenantCount"`
	PublishCount  int64  `json:"publishCount"`
	TenantCalls   int64  `json:"tenantCalls"`
	BoostedCount  int64  `json:"boostedCount"`
	DroppedCount  int64  `json:"droppedCount"`
	SingleTenant  int64  `json:"singleTenantRoutes"`
	ProfileRoutes int64  `json:"profileRoutes"`
	Broadcasts    int64  `json:"broadcastRoutes"`
}

// handleStats returns runtime and aggregate publish statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.stats.snapshot()

	clients := 0
	if s.feed != nil {
		clients = s.feed.ClientCount()
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Uptime:        time.Since(s.startAt).Truncate(time.Second).String(),
		OpsFeedCount:  clients,
		TenantCount:   len(s.index.Tenants()),
		PublishCount:  snap.PublishCount,
		TenantCalls:   snap.TenantCalls,
		BoostedCount:  snap.BoostedCount,
		DroppedCount:  snap.DroppedCount,
		SingleTenant:  snap.SingleTenant,
		ProfileRoutes: snap.ProfileRoutes,
		Broadcasts:    snap.Broadcasts,
	})
}
