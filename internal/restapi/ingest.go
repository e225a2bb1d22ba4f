package restapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ndrandal/odds-router/internal/oddsmodel"
)

// Publisher is the subset of router.Publisher the ingest endpoint drives.
// Declared as an interface so this package doesn't depend on router's
// collaborator wiring, only its entry point.
type Publisher interface {
	Publish(ctx context.Context, message oddsmodel.Message, sportURN string, route oddsmodel.RouteParameters, headers map[string]string) error
}

// ingestRequest is the wire shape accepted by POST /api/publish: an
// odds-change message plus the sport URN and route to publish it under.
// This is the one inbound surface this spec's external collaborators
// (the upstream feed source) are assumed to call; its exact transport is
// unspecified upstream, so a plain JSON POST is provided here the way the
// teacher exposes every other operation over its REST API.
type ingestRequest struct {
	Message  oddsmodel.Message `json:"message"`
	SportURN string            `json:"sportUrn"`
	Route    routeDTO          `json:"route"`
	Headers  map[string]string `json:"headers,omitempty"`
}

type routeDTO struct {
	Kind      string `json:"kind"` // "singleTenant" | "profile" | "broadcast"
	TenantID  string `json:"tenantId,omitempty"`
	NodeID    string `json:"nodeId,omitempty"`
	ProfileID string `json:"profileId,omitempty"`
}

func (d routeDTO) toRoute() (oddsmodel.RouteParameters, bool) {
	switch d.Kind {
	case "singleTenant":
		return oddsmodel.TenantRoute(d.TenantID, d.NodeID), true
	case "profile":
		return oddsmodel.ProfileRoute(d.ProfileID), true
	case "broadcast":
		return oddsmodel.BroadcastRoute(), true
	default:
		return oddsmodel.RouteParameters{}, false
	}
}

// handleIngest decodes an odds-change publish request and drives it
// through the publisher, reporting per-tenant failures as a 207-style
// body while still returning 200: the router's own fan-out isolation
// already decided which tenants succeeded.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}

	route, ok := req.Route.toRoute()
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown route kind: "+req.Route.Kind)
		return
	}

	err := s.publisher.Publish(r.Context(), req.Message, req.SportURN, route, req.Headers)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "partial", "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
